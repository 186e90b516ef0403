package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"community-pulse/internal/app"
)

var showLimit int

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display recent snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		return getApp().Show(cmd.Context(), app.ShowOptions{Limit: showLimit})
	},
}

func init() {
	showCmd.Flags().IntVar(&showLimit, "limit", 20, "Number of snapshots to display")
}
