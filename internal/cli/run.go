package cli

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the capture and posting engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Run(cmd.Context())
	},
}

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Post any schedules matching the current minute, then exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().PostDue(cmd.Context())
	},
}
