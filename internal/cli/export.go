package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"community-pulse/internal/app"
	"community-pulse/internal/temporal"
)

var (
	exportFrom      string
	exportTo        string
	exportCSVPath   string
	exportPNGPath   string
	exportMaxPoints int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export snapshots as CSV and/or PNG chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ExportOptions{
			CSVPath:   exportCSVPath,
			PNGPath:   exportPNGPath,
			MaxPoints: exportMaxPoints,
		}

		if exportFrom != "" {
			from, err := temporal.ParseDate(exportFrom)
			if err != nil {
				return fmt.Errorf("invalid --from value: %w", err)
			}
			opts.From = &from
		}

		if exportTo != "" {
			to, err := temporal.ParseDate(exportTo)
			if err != nil {
				return fmt.Errorf("invalid --to value: %w", err)
			}
			opts.To = &to
		}

		return getApp().Export(cmd.Context(), opts)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "Start date (YYYY-MM-DD, inclusive)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "End date (YYYY-MM-DD, inclusive)")
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "Path to write CSV data")
	exportCmd.Flags().StringVar(&exportPNGPath, "png", "", "Path to write PNG chart")
	exportCmd.Flags().IntVar(&exportMaxPoints, "max-points", 0, "Maximum data points to export (defaults to config)")
}
