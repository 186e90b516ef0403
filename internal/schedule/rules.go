package schedule

import (
	"strconv"
	"strings"
	"time"

	"community-pulse/internal/temporal"
)

// Category names a posting cadence. Unknown categories in configuration
// are ignored rather than rejected.
type Category string

const (
	CategoryDaily   Category = "daily"
	CategoryWeekly  Category = "weekly"
	CategoryMonthly Category = "monthly"
	CategoryAnnual  Category = "annual"
)

// Categories returns the known categories in a fixed evaluation order.
func Categories() []Category {
	return []Category{CategoryDaily, CategoryWeekly, CategoryMonthly, CategoryAnnual}
}

// ChannelConfig toggles one delivery target within a category.
type ChannelConfig struct {
	Enabled bool
}

// CategorySchedule describes when one category posts and to which channels.
// All channels of a category share the same time-of-day.
type CategorySchedule struct {
	Enabled  bool
	Time     string // HH:MM, 24-hour, validated by temporal.ParseTimeOfDay
	Rule     DayRule
	Channels map[string]ChannelConfig
}

// Config maps categories to their schedules.
type Config map[Category]CategorySchedule

// DayRule is the day-selection half of a schedule: one implementation per
// category kind, so a schedule carries exactly the fields its kind needs.
type DayRule interface {
	// cronFields returns the day-of-month, month, and day-of-week fields.
	cronFields() (dom, month, dow string)
	// matches reports whether t's calendar day satisfies the rule.
	matches(t time.Time) bool
}

// EveryDay fires on every calendar day.
type EveryDay struct{}

func (EveryDay) cronFields() (string, string, string) { return "*", "*", "*" }
func (EveryDay) matches(time.Time) bool               { return true }

// WeekdaySet fires on an enumerated set of weekdays. An empty set means
// every day.
type WeekdaySet struct {
	Days []time.Weekday
}

func (r WeekdaySet) cronFields() (string, string, string) {
	if len(r.Days) == 0 {
		return "*", "*", "*"
	}
	indices := make([]string, len(r.Days))
	for i, d := range r.Days {
		indices[i] = strconv.Itoa(int(d))
	}
	return "*", "*", strings.Join(indices, ",")
}

func (r WeekdaySet) matches(t time.Time) bool {
	if len(r.Days) == 0 {
		return true
	}
	for _, d := range r.Days {
		if t.Weekday() == d {
			return true
		}
	}
	return false
}

// SingleWeekday fires once a week on a fixed weekday.
type SingleWeekday struct {
	Day time.Weekday
}

func (r SingleWeekday) cronFields() (string, string, string) {
	return "*", "*", strconv.Itoa(int(r.Day))
}

func (r SingleWeekday) matches(t time.Time) bool { return t.Weekday() == r.Day }

// MonthDay fires once a month on a fixed day, or on the last day of the
// month when Last is set.
type MonthDay struct {
	Day  int
	Last bool
}

// lastDayCronApprox stands in for "last day of month" in cron output.
// Cron has no native last-day token, so day 28 is emitted for every month;
// inexact for 29-31 day months. Kept as-is pending a product decision --
// emitting the true last day would shift observable post dates.
const lastDayCronApprox = 28

func (r MonthDay) cronFields() (string, string, string) {
	day := r.Day
	if r.Last {
		day = lastDayCronApprox
	}
	return strconv.Itoa(day), "*", "*"
}

func (r MonthDay) matches(t time.Time) bool {
	// Direct evaluation uses the true last calendar day, unlike the cron
	// rendering above.
	if r.Last {
		return t.Day() == temporal.LastDayOfMonth(t)
	}
	return t.Day() == r.Day
}

// YearDate fires once a year on a fixed month and day.
type YearDate struct {
	Month time.Month
	Day   int
}

func (r YearDate) cronFields() (string, string, string) {
	return strconv.Itoa(r.Day), strconv.Itoa(int(r.Month)), "*"
}

func (r YearDate) matches(t time.Time) bool {
	return t.Month() == r.Month && t.Day() == r.Day
}

// defaultRule supplies the rule used when a category has none configured.
func defaultRule(cat Category) DayRule {
	switch cat {
	case CategoryWeekly:
		return SingleWeekday{Day: time.Sunday}
	case CategoryMonthly:
		return MonthDay{Day: 1}
	case CategoryAnnual:
		return YearDate{Month: time.December, Day: 31}
	default:
		return EveryDay{}
	}
}
