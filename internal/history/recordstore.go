package history

import (
	"context"
	"errors"

	"community-pulse/internal/temporal"
)

// ErrNotConfigured indicates the backing store was not initialised.
var ErrNotConfigured = errors.New("history: store not configured")

// AdvisoryLocker exposes advisory lock helpers for single-writer capture.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// RecordStore is the persistence contract for daily snapshots. Absence is
// never an error: Get and Latest return nil when nothing is stored.
type RecordStore interface {
	// Put upserts by snapshot date, last write wins.
	Put(ctx context.Context, snap Snapshot) error
	// Get performs an exact-date lookup.
	Get(ctx context.Context, date temporal.Date) (*Snapshot, error)
	// Range returns snapshots with start <= date <= end, ascending by date.
	// Dates without a snapshot are simply absent from the result.
	Range(ctx context.Context, start, end temporal.Date) ([]Snapshot, error)
	// Latest returns the snapshot with the maximum date.
	Latest(ctx context.Context) (*Snapshot, error)
	// Recent returns up to limit snapshots, descending by date.
	Recent(ctx context.Context, limit int) ([]Snapshot, error)
	// DeleteBefore removes every snapshot dated strictly before cutoff and
	// reports how many were removed.
	DeleteBefore(ctx context.Context, cutoff temporal.Date) (int64, error)
}
