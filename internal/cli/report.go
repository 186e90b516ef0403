package cli

import (
	"github.com/spf13/cobra"

	"community-pulse/internal/app"
)

var reportDays int

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the trend report for a look-back window",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Report(cmd.Context(), app.ReportOptions{LookbackDays: reportDays})
	},
}

var schedulesCmd = &cobra.Command{
	Use:   "schedules",
	Short: "Print derived cron expressions and any conflicts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Schedules()
	},
}

var checkExpiryCmd = &cobra.Command{
	Use:   "check-expiry",
	Short: "Evaluate the credential expiry check once",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().CheckExpiry()
	},
}

func init() {
	reportCmd.Flags().IntVar(&reportDays, "days", 7, "Look-back window in days (7, 30, and 365 are the standard windows)")
}
