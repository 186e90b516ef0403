package app

import (
	"context"
	"fmt"
	"os"

	"community-pulse/internal/history"
	"community-pulse/internal/notify"
	"community-pulse/internal/schedule"
	"community-pulse/internal/trend"
)

// Report prints the trend report for one look-back window.
func (a *App) Report(ctx context.Context, opts ReportOptions) error {
	if opts.LookbackDays <= 0 {
		return fmt.Errorf("--days must be greater than zero")
	}

	records, closeRecords, err := a.openRecords(ctx)
	if err != nil {
		return err
	}
	if closeRecords != nil {
		defer closeRecords()
	}

	reporter := trend.NewReporter(history.NewStore(records, a.Logger))
	report, err := reporter.Report(ctx, opts.LookbackDays)
	if err != nil {
		return err
	}

	fmt.Fprint(os.Stdout, notify.RenderReport(categoryForLookback(opts.LookbackDays), report))
	return nil
}

func categoryForLookback(days int) schedule.Category {
	switch days {
	case 1:
		return schedule.CategoryDaily
	case 30:
		return schedule.CategoryMonthly
	case 365:
		return schedule.CategoryAnnual
	default:
		return schedule.CategoryWeekly
	}
}
