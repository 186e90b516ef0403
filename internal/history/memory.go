package history

import (
	"context"
	"sort"
	"sync"

	"community-pulse/internal/temporal"
)

// MemoryStore keeps snapshots and notification marks in process memory.
// Used by tests and by DB-less runs where persistence is disabled.
type MemoryStore struct {
	mu    sync.Mutex
	snaps map[temporal.Date]Snapshot
	marks map[markKey]struct{}
}

type markKey struct {
	key string
	day temporal.Date
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snaps: make(map[temporal.Date]Snapshot),
		marks: make(map[markKey]struct{}),
	}
}

// Put upserts by date.
func (m *MemoryStore) Put(_ context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[snap.Date] = snap
	return nil
}

// Get performs an exact-date lookup; nil when absent.
func (m *MemoryStore) Get(_ context.Context, date temporal.Date) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if snap, ok := m.snaps[date]; ok {
		return &snap, nil
	}
	return nil, nil
}

// Range returns snapshots within [start, end], ascending.
func (m *MemoryStore) Range(_ context.Context, start, end temporal.Date) ([]Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Snapshot, 0)
	for date, snap := range m.snaps {
		if date.Before(start) || date.After(end) {
			continue
		}
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Latest returns the most recent snapshot; nil when empty.
func (m *MemoryStore) Latest(_ context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var latest *Snapshot
	for date, snap := range m.snaps {
		if latest == nil || date.After(latest.Date) {
			s := snap
			latest = &s
		}
	}
	return latest, nil
}

// Recent returns up to limit snapshots, newest first.
func (m *MemoryStore) Recent(_ context.Context, limit int) ([]Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Snapshot, 0, len(m.snaps))
	for _, snap := range m.snaps {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// DeleteBefore removes snapshots dated strictly before cutoff.
func (m *MemoryStore) DeleteBefore(_ context.Context, cutoff temporal.Date) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for date := range m.snaps {
		if date.Before(cutoff) {
			delete(m.snaps, date)
			deleted++
		}
	}
	return deleted, nil
}

// AlreadyNotified reports whether a mark exists for key on day.
func (m *MemoryStore) AlreadyNotified(_ context.Context, key string, day temporal.Date) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.marks[markKey{key: key, day: day}]
	return ok, nil
}

// MarkNotified records that key was notified on day.
func (m *MemoryStore) MarkNotified(_ context.Context, key string, day temporal.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marks[markKey{key: key, day: day}] = struct{}{}
	return nil
}

var _ RecordStore = (*MemoryStore)(nil)
