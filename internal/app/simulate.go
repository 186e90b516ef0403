package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"community-pulse/internal/history"
	"community-pulse/internal/notify"
	"community-pulse/internal/schedule"
	"community-pulse/internal/temporal"
	"community-pulse/internal/trend"
)

// Simulate feeds a synthetic current reading and a reference reading 10%
// lower through the weekly report path, printing the rendered message and
// delivering it to any configured notifiers.
func (a *App) Simulate(ctx context.Context, opts SimulateOptions) error {
	capacity := decimal.NewFromFloat(opts.Capacity)
	records := history.NewMemoryStore()

	today := temporal.Today(nil)
	now := time.Now().UTC()

	previous := history.Snapshot{
		Date:          today.AddDays(-7),
		Timestamp:     now.AddDate(0, 0, -7),
		MemberCount:   scaleDown(opts.Members),
		TotalChannels: scaleDown(opts.Channels),
		TotalCapacity: capacity.Mul(decimal.NewFromFloat(0.9)),
		Source:        "simulated",
	}
	current := history.Snapshot{
		Date:          today,
		Timestamp:     now,
		MemberCount:   opts.Members,
		TotalChannels: opts.Channels,
		TotalCapacity: capacity,
		Source:        "simulated",
	}

	if err := records.Put(ctx, previous); err != nil {
		return err
	}
	if err := records.Put(ctx, current); err != nil {
		return err
	}

	reporter := trend.NewReporter(history.NewStore(records, a.Logger))
	report, err := reporter.Report(ctx, 7)
	if err != nil {
		return err
	}

	text := notify.RenderReport(schedule.CategoryWeekly, report)
	fmt.Fprint(os.Stdout, text)

	for channel, notifier := range a.newNotifiers() {
		if err := notifier.Notify(ctx, text); err != nil {
			a.Logger.Error().Err(err).Str("channel", channel).Msg("simulated post delivery failed")
			continue
		}
		a.Logger.Info().Str("channel", channel).Msg("simulated post delivered")
	}
	return nil
}

func scaleDown(v int64) int64 {
	return v * 9 / 10
}
