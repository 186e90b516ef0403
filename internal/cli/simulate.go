package cli

import (
	"github.com/spf13/cobra"

	"community-pulse/internal/app"
)

var (
	simMembers  int64
	simChannels int64
	simCapacity float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a synthetic reading through the weekly report path",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Simulate(cmd.Context(), app.SimulateOptions{
			Members:  simMembers,
			Channels: simChannels,
			Capacity: simCapacity,
		})
	},
}

func init() {
	simulateCmd.Flags().Int64Var(&simMembers, "members", 100, "Simulated member count")
	simulateCmd.Flags().Int64Var(&simChannels, "channels", 50, "Simulated channel count")
	simulateCmd.Flags().Float64Var(&simCapacity, "capacity", 10.0, "Simulated total capacity in BTC")
}
