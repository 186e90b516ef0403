package schedule

import (
	"fmt"
	"strconv"
	"strings"

	"community-pulse/internal/temporal"
)

// Generate derives the five-field cron expression
// (minute hour day-of-month month day-of-week) for one category schedule.
// A disabled schedule yields an empty expression and no error. A malformed
// time-of-day is a configuration bug and surfaces as ErrMalformedTime.
func Generate(cat Category, cs CategorySchedule) (string, error) {
	if !cs.Enabled {
		return "", nil
	}

	hour, minute, err := temporal.ParseTimeOfDay(cs.Time)
	if err != nil {
		return "", fmt.Errorf("schedule %q: %w", cat, err)
	}

	rule := cs.Rule
	if rule == nil {
		rule = defaultRule(cat)
	}

	dom, month, dow := rule.cronFields()
	return fmt.Sprintf("%d %d %s %s %s", minute, hour, dom, month, dow), nil
}

// GenerateAll derives expressions for every enabled channel of every known
// category. Disabled categories and channels are omitted.
func GenerateAll(cfg Config) (map[Category]map[string]string, error) {
	out := make(map[Category]map[string]string)
	for _, cat := range Categories() {
		cs, ok := cfg[cat]
		if !ok || !cs.Enabled {
			continue
		}

		expr, err := Generate(cat, cs)
		if err != nil {
			return nil, err
		}

		for name, ch := range cs.Channels {
			if !ch.Enabled {
				continue
			}
			if out[cat] == nil {
				out[cat] = make(map[string]string)
			}
			out[cat][name] = expr
		}
	}
	return out, nil
}

var cronFieldMax = [5]struct{ min, max int }{
	{0, 59}, // minute
	{0, 23}, // hour
	{1, 31}, // day of month
	{1, 12}, // month
	{0, 6},  // day of week
}

// ValidateCron checks the shape of an externally supplied cron expression:
// exactly five whitespace-separated fields, each either * or a single
// integer within its canonical range. Comma lists fail this check, so the
// list-form expressions emitted by Generate must never be run through it.
func ValidateCron(expr string) bool {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return false
	}
	for i, field := range fields {
		if field == "*" {
			continue
		}
		v, err := strconv.Atoi(field)
		if err != nil {
			return false
		}
		if v < cronFieldMax[i].min || v > cronFieldMax[i].max {
			return false
		}
	}
	return true
}
