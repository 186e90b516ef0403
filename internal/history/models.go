package history

import (
	"time"

	"github.com/shopspring/decimal"

	"community-pulse/internal/temporal"
)

// Snapshot is one day's recorded community metric reading. At most one
// snapshot exists per calendar date; writing again for the same date
// overwrites the earlier reading.
type Snapshot struct {
	Date          temporal.Date
	Timestamp     time.Time
	MemberCount   int64
	TotalChannels int64
	TotalCapacity decimal.Decimal
	BlockHeight   *int64
	Source        string
}
