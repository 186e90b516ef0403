package schedule

import (
	"time"

	"community-pulse/internal/temporal"
)

// MatchesNow reports whether now (evaluated in UTC) is a firing instant
// for the schedule. The minute must equal the configured minute exactly:
// a caller ticking hourly at minute 0 only ever fires :00 schedules, and
// sub-hour times need a sub-hour invocation cadence.
func MatchesNow(cat Category, cs CategorySchedule, now time.Time) bool {
	if !cs.Enabled {
		return false
	}

	hour, minute, err := temporal.ParseTimeOfDay(cs.Time)
	if err != nil {
		return false
	}

	utc := now.UTC()
	if utc.Hour() != hour || utc.Minute() != minute {
		return false
	}

	rule := cs.Rule
	if rule == nil {
		rule = defaultRule(cat)
	}
	return rule.matches(utc)
}
