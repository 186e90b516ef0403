package trend

import (
	"context"
	"fmt"

	"community-pulse/internal/history"
)

// Report pairs an analysis with a human-readable period label.
type Report struct {
	PeriodLabel  string
	LookbackDays int
	Analysis     Analysis
	Current      *history.Snapshot
}

// Reporter computes look-back reports against the historical store.
type Reporter struct {
	store *history.Store
}

// NewReporter wires the historical store into a Reporter.
func NewReporter(store *history.Store) *Reporter {
	return &Reporter{store: store}
}

// Report analyses the latest snapshot against the one exactly lookbackDays
// earlier. Callers typically use 7, 30, or 365 days; each is independently
// invokable.
func (r *Reporter) Report(ctx context.Context, lookbackDays int) (Report, error) {
	current, err := r.store.Latest(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("fetch latest snapshot: %w", err)
	}

	previous, err := r.store.NDaysAgo(ctx, lookbackDays)
	if err != nil {
		return Report{}, fmt.Errorf("fetch reference snapshot: %w", err)
	}

	return Report{
		PeriodLabel:  periodLabel(lookbackDays),
		LookbackDays: lookbackDays,
		Analysis:     Analyze(current, previous),
		Current:      current,
	}, nil
}

func periodLabel(days int) string {
	switch days {
	case 1:
		return "daily"
	case 7:
		return "weekly"
	case 30:
		return "monthly"
	case 365:
		return "annual"
	default:
		return fmt.Sprintf("%d-day", days)
	}
}
