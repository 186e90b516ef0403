package expiry

import (
	"fmt"
	"math"
	"strings"
	"time"

	"community-pulse/internal/temporal"
)

// Urgency grades how close a credential is to expiring.
type Urgency string

const (
	UrgencyNone     Urgency = "none"
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
	UrgencyExpired  Urgency = "expired"
)

// DefaultThresholds are the warning look-aheads, in days before expiry.
var DefaultThresholds = []int{30, 14, 7, 3, 1}

// Result is derived fresh on every check; nothing here persists beyond the
// caller's same-day dedup mark.
type Result struct {
	ShouldWarn bool
	DaysUntil  int
	Urgency    Urgency
}

// Check decides whether a warning is due for the given expiry timestamp.
// The expiry string accepts RFC 3339 or plain YYYY-MM-DD. An empty or
// unparsable value is a configuration bug and surfaces as an error
// wrapping temporal.ErrMalformedDate; the zero Result never warns.
//
// Days-until is ceil((expiry - now) / 24h). A warning fires when that
// count equals one of the configured thresholds, graded by closeness, or
// on every invocation once past expiry. The check itself is stateless;
// at-most-once-per-day behaviour comes from the caller's NotifyState.
func Check(expiry string, thresholds []int, now time.Time) (Result, error) {
	expiry = strings.TrimSpace(expiry)
	if expiry == "" {
		return Result{Urgency: UrgencyNone}, fmt.Errorf("expiry date not configured: %w", temporal.ErrMalformedDate)
	}

	expiresAt, err := parseExpiry(expiry)
	if err != nil {
		return Result{Urgency: UrgencyNone}, err
	}

	days := int(math.Ceil(expiresAt.Sub(now).Hours() / 24))

	for _, threshold := range thresholds {
		if days == threshold {
			return Result{ShouldWarn: true, DaysUntil: days, Urgency: urgencyFor(days)}, nil
		}
	}

	if days < 0 {
		return Result{ShouldWarn: true, DaysUntil: days, Urgency: UrgencyExpired}, nil
	}

	return Result{DaysUntil: days, Urgency: UrgencyNone}, nil
}

func parseExpiry(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := temporal.ParseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	return d.Time(time.UTC), nil
}

func urgencyFor(days int) Urgency {
	switch {
	case days <= 1:
		return UrgencyCritical
	case days <= 3:
		return UrgencyHigh
	case days <= 7:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}
