package expiry

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"community-pulse/internal/temporal"
)

// NotifyState tracks which (key, day) pairs have already produced a
// warning. Supplied by the caller and typically store-backed, so multiple
// engine instances dedup against the same state instead of a per-process
// map.
type NotifyState interface {
	AlreadyNotified(ctx context.Context, key string, day temporal.Date) (bool, error)
	MarkNotified(ctx context.Context, key string, day temporal.Date) error
}

// Monitor combines the stateless expiry check with day-level dedup for one
// monitored credential.
type Monitor struct {
	key        string
	expiry     string
	thresholds []int
	state      NotifyState
	logger     zerolog.Logger
}

// NewMonitor constructs a monitor for the credential named key. A nil
// state disables dedup; thresholds default to DefaultThresholds.
func NewMonitor(key, expiry string, thresholds []int, state NotifyState, logger zerolog.Logger) *Monitor {
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds
	}
	return &Monitor{
		key:        key,
		expiry:     expiry,
		thresholds: thresholds,
		state:      state,
		logger:     logger.With().Str("component", "expiry_monitor").Str("key", key).Logger(),
	}
}

// DueWarning evaluates the expiry check and reports whether a warning
// should actually be delivered now, suppressing same-day repeats.
func (m *Monitor) DueWarning(ctx context.Context, now time.Time) (Result, bool, error) {
	result, err := Check(m.expiry, m.thresholds, now)
	if err != nil {
		return result, false, err
	}
	if !result.ShouldWarn {
		return result, false, nil
	}

	if m.state != nil {
		day := temporal.DateOf(now)
		seen, stateErr := m.state.AlreadyNotified(ctx, m.key, day)
		if stateErr != nil {
			return result, false, stateErr
		}
		if seen {
			m.logger.Debug().Str("day", day.String()).Msg("warning already delivered today")
			return result, false, nil
		}
	}

	return result, true, nil
}

// MarkWarned records that today's warning was delivered.
func (m *Monitor) MarkWarned(ctx context.Context, now time.Time) error {
	if m.state == nil {
		return nil
	}
	return m.state.MarkNotified(ctx, m.key, temporal.DateOf(now))
}
