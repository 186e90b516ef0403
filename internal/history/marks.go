package history

import "community-pulse/internal/expiry"

// Both backends double as expiry dedup state.
var (
	_ expiry.NotifyState = (*MemoryStore)(nil)
	_ expiry.NotifyState = (*PostgresStore)(nil)
)
