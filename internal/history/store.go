package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"community-pulse/internal/temporal"
)

// DefaultRetentionDays is how long snapshots are kept before eviction.
const DefaultRetentionDays = 400

// NoDataSentinel is returned by ExportCSV instead of an empty table when
// the range holds no snapshots. Callers must check for it.
const NoDataSentinel = "No snapshots in range"

var exportHeader = []string{
	"Date",
	"Timestamp",
	"Member Count",
	"Total Channels",
	"Total Capacity (BTC)",
	"Block Height",
	"Source",
}

// Store layers the day-oriented operations (look-backs, retention,
// export) over an injected RecordStore backend.
type Store struct {
	records RecordStore
	logger  zerolog.Logger

	// now is swapped out by tests; everything date-relative goes through it.
	now func() time.Time
}

// NewStore wires a RecordStore into a Store.
func NewStore(records RecordStore, logger zerolog.Logger) *Store {
	return &Store{
		records: records,
		logger:  logger.With().Str("component", "history").Logger(),
		now:     time.Now,
	}
}

func (s *Store) today() temporal.Date {
	return temporal.DateOf(s.now())
}

// Put upserts a snapshot by its date.
func (s *Store) Put(ctx context.Context, snap Snapshot) error {
	return s.records.Put(ctx, snap)
}

// Get performs an exact-date lookup; nil when absent.
func (s *Store) Get(ctx context.Context, date temporal.Date) (*Snapshot, error) {
	return s.records.Get(ctx, date)
}

// Range lists snapshots within [start, end], ascending by date.
func (s *Store) Range(ctx context.Context, start, end temporal.Date) ([]Snapshot, error) {
	return s.records.Range(ctx, start, end)
}

// Latest returns the most recent snapshot; nil when empty.
func (s *Store) Latest(ctx context.Context) (*Snapshot, error) {
	return s.records.Latest(ctx)
}

// Recent lists up to limit snapshots, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Snapshot, error) {
	return s.records.Recent(ctx, limit)
}

// NDaysAgo looks up the snapshot dated exactly n calendar days before
// today. No nearest-neighbour fallback: a missing day returns nil.
func (s *Store) NDaysAgo(ctx context.Context, n int) (*Snapshot, error) {
	target := s.today().AddDays(-n)
	return s.records.Get(ctx, target)
}

// EvictOlderThan deletes snapshots dated strictly before
// today - retentionDays and returns the number deleted. Callers invoke it
// opportunistically; nothing guarantees a deterministic cadence.
func (s *Store) EvictOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	cutoff := s.today().AddDays(-retentionDays)

	deleted, err := s.records.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("evict snapshots: %w", err)
	}
	if deleted > 0 {
		s.logger.Info().Int64("deleted", deleted).Str("cutoff", cutoff.String()).Msg("evicted aged snapshots")
	}
	return deleted, nil
}

// ExportCSV renders the range as comma-separated values with every field
// double-quoted. Yields NoDataSentinel when the range is empty.
func (s *Store) ExportCSV(ctx context.Context, start, end temporal.Date) (string, error) {
	snaps, err := s.records.Range(ctx, start, end)
	if err != nil {
		return "", err
	}
	if len(snaps) == 0 {
		return NoDataSentinel, nil
	}

	var b strings.Builder
	writeQuotedRow(&b, exportHeader)

	for _, snap := range snaps {
		block := ""
		if snap.BlockHeight != nil {
			block = fmt.Sprintf("%d", *snap.BlockHeight)
		}
		writeQuotedRow(&b, []string{
			snap.Date.String(),
			snap.Timestamp.UTC().Format(time.RFC3339),
			fmt.Sprintf("%d", snap.MemberCount),
			fmt.Sprintf("%d", snap.TotalChannels),
			snap.TotalCapacity.String(),
			block,
			snap.Source,
		})
	}
	return b.String(), nil
}

func writeQuotedRow(b *strings.Builder, fields []string) {
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(field, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}
