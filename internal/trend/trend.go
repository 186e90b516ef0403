package trend

import (
	"github.com/shopspring/decimal"

	"community-pulse/internal/history"
)

// Bucket is the qualitative classification of a percentage delta.
type Bucket string

const (
	BucketStrongGrowth  Bucket = "strong-growth"
	BucketGrowth        Bucket = "growth"
	BucketFlat          Bucket = "flat"
	BucketDecline       Bucket = "decline"
	BucketStrongDecline Bucket = "strong-decline"
)

// Analysis unavailability reasons. The distinction between missing current
// and missing reference data is required behaviour, not cosmetic.
const (
	ReasonNoCurrent  = "No current data"
	ReasonNoPrevious = "No previous data"
)

var (
	hundred = decimal.NewFromInt(100)
	five    = decimal.NewFromInt(5)
)

// Delta holds one metric's movement between two snapshots.
type Delta struct {
	Current  decimal.Decimal
	Previous decimal.Decimal
	Absolute decimal.Decimal
	Percent  decimal.Decimal
	Bucket   Bucket
}

// ComputeDelta derives the absolute and percentage movement. When previous
// is zero the percentage is +100 for any growth and 0 otherwise; a
// documented approximation avoiding division by zero, not a true
// percentage.
func ComputeDelta(current, previous decimal.Decimal) Delta {
	absolute := current.Sub(previous)

	var percent decimal.Decimal
	if previous.IsZero() {
		if current.Sign() > 0 {
			percent = hundred
		} else {
			percent = decimal.Zero
		}
	} else {
		percent = absolute.Div(previous).Mul(hundred)
	}

	return Delta{
		Current:  current,
		Previous: previous,
		Absolute: absolute,
		Percent:  percent,
		Bucket:   Classify(percent),
	}
}

// Classify maps a percentage delta to its trend bucket. Boundaries lean
// toward the milder bucket: exactly 5 is growth, exactly 0 is flat,
// exactly -5 is decline.
func Classify(percent decimal.Decimal) Bucket {
	switch {
	case percent.GreaterThan(five):
		return BucketStrongGrowth
	case percent.GreaterThan(decimal.Zero):
		return BucketGrowth
	case percent.IsZero():
		return BucketFlat
	case percent.LessThan(five.Neg()):
		return BucketStrongDecline
	default:
		return BucketDecline
	}
}

// Analysis is the per-metric trend result for one snapshot pair. Ephemeral;
// computed on demand and never persisted.
type Analysis struct {
	Available bool
	Reason    string
	Members   Delta
	Channels  Delta
	Capacity  Delta
}

// Analyze computes deltas for every tracked metric. Either snapshot being
// absent yields an unavailable result with the matching reason.
func Analyze(current, previous *history.Snapshot) Analysis {
	if current == nil {
		return Analysis{Reason: ReasonNoCurrent}
	}
	if previous == nil {
		return Analysis{Reason: ReasonNoPrevious}
	}

	return Analysis{
		Available: true,
		Members:   ComputeDelta(decimal.NewFromInt(current.MemberCount), decimal.NewFromInt(previous.MemberCount)),
		Channels:  ComputeDelta(decimal.NewFromInt(current.TotalChannels), decimal.NewFromInt(previous.TotalChannels)),
		Capacity:  ComputeDelta(current.TotalCapacity, previous.TotalCapacity),
	}
}
