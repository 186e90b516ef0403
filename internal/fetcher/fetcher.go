package fetcher

import (
	"context"

	"github.com/shopspring/decimal"
)

// Metrics is one raw reading pushed into the engine by the fetch step.
type Metrics struct {
	MemberCount   int64
	TotalChannels int64
	TotalCapacity decimal.Decimal
	BlockHeight   *int64
	Source        string
}

// MetricsFetcher retrieves the current community metrics from an upstream
// statistics API.
type MetricsFetcher interface {
	Fetch(ctx context.Context) (Metrics, error)
}
