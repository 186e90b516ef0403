package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"community-pulse/internal/temporal"
)

func enabledChannels(names ...string) map[string]ChannelConfig {
	out := make(map[string]ChannelConfig, len(names))
	for _, name := range names {
		out[name] = ChannelConfig{Enabled: true}
	}
	return out
}

func TestGenerateDisabledYieldsNone(t *testing.T) {
	for _, cat := range Categories() {
		expr, err := Generate(cat, CategorySchedule{Enabled: false, Time: "09:00"})
		require.NoError(t, err)
		require.Empty(t, expr, "disabled %s schedule must not produce an expression", cat)
	}
}

func TestGenerateDaily(t *testing.T) {
	expr, err := Generate(CategoryDaily, CategorySchedule{Enabled: true, Time: "09:30"})
	require.NoError(t, err)
	require.Equal(t, "30 9 * * *", expr)

	expr, err = Generate(CategoryDaily, CategorySchedule{
		Enabled: true,
		Time:    "09:30",
		Rule:    WeekdaySet{Days: []time.Weekday{time.Monday, time.Wednesday, time.Friday}},
	})
	require.NoError(t, err)
	require.Equal(t, "30 9 * * 1,3,5", expr)
}

func TestGenerateWeekly(t *testing.T) {
	expr, err := Generate(CategoryWeekly, CategorySchedule{
		Enabled: true,
		Time:    "18:00",
		Rule:    SingleWeekday{Day: time.Friday},
	})
	require.NoError(t, err)
	require.Equal(t, "0 18 * * 5", expr)
}

func TestGenerateMonthlyLastApproximation(t *testing.T) {
	// "last" always renders day 28, whatever the month actually holds.
	expr, err := Generate(CategoryMonthly, CategorySchedule{
		Enabled: true,
		Time:    "12:00",
		Rule:    MonthDay{Last: true},
	})
	require.NoError(t, err)
	require.Equal(t, "0 12 28 * *", expr)

	expr, err = Generate(CategoryMonthly, CategorySchedule{
		Enabled: true,
		Time:    "12:00",
		Rule:    MonthDay{Day: 15},
	})
	require.NoError(t, err)
	require.Equal(t, "0 12 15 * *", expr)
}

func TestGenerateAnnual(t *testing.T) {
	expr, err := Generate(CategoryAnnual, CategorySchedule{
		Enabled: true,
		Time:    "00:00",
		Rule:    YearDate{Month: time.June, Day: 15},
	})
	require.NoError(t, err)
	require.Equal(t, "0 0 15 6 *", expr)

	// No date configured defaults to December 31.
	expr, err = Generate(CategoryAnnual, CategorySchedule{Enabled: true, Time: "08:05"})
	require.NoError(t, err)
	require.Equal(t, "5 8 31 12 *", expr)
}

func TestGenerateMalformedTime(t *testing.T) {
	_, err := Generate(CategoryDaily, CategorySchedule{Enabled: true, Time: "9am"})
	require.Error(t, err)
	require.True(t, errors.Is(err, temporal.ErrMalformedTime))
}

func TestGenerateAllSkipsDisabled(t *testing.T) {
	cfg := Config{
		CategoryDaily: {
			Enabled:  true,
			Time:     "09:00",
			Channels: map[string]ChannelConfig{"telegram": {Enabled: true}, "nostr": {Enabled: false}},
		},
		CategoryWeekly: {
			Enabled:  false,
			Time:     "09:00",
			Channels: enabledChannels("telegram"),
		},
	}

	generated, err := GenerateAll(cfg)
	require.NoError(t, err)
	require.Len(t, generated, 1)
	require.Equal(t, map[string]string{"telegram": "0 9 * * *"}, generated[CategoryDaily])
}

func TestDetectConflicts(t *testing.T) {
	cfg := Config{
		CategoryDaily: {
			Enabled:  true,
			Time:     "09:00",
			Rule:     WeekdaySet{Days: []time.Weekday{time.Sunday}},
			Channels: enabledChannels("telegram"),
		},
		CategoryWeekly: {
			Enabled:  true,
			Time:     "09:00",
			Rule:     SingleWeekday{Day: time.Sunday},
			Channels: enabledChannels("telegram"),
		},
	}

	generated, err := GenerateAll(cfg)
	require.NoError(t, err)

	conflicts := DetectConflicts(generated)
	require.Len(t, conflicts, 1)
	require.Equal(t, "telegram", conflicts[0].Channel)
	require.Equal(t, CategoryDaily, conflicts[0].First)
	require.Equal(t, CategoryWeekly, conflicts[0].Second)

	// One differing field is enough to clear the conflict.
	weekly := cfg[CategoryWeekly]
	weekly.Time = "10:00"
	cfg[CategoryWeekly] = weekly

	generated, err = GenerateAll(cfg)
	require.NoError(t, err)
	require.Empty(t, DetectConflicts(generated))
}

func TestValidateCron(t *testing.T) {
	valid := []string{"0 9 * * *", "59 23 31 12 6", "* * * * *", "0 0 1 1 0"}
	for _, expr := range valid {
		require.True(t, ValidateCron(expr), "expected %q to validate", expr)
	}

	invalid := []string{
		"",
		"0 9 * *",
		"0 9 * * * *",
		"60 9 * * *",
		"0 24 * * *",
		"0 9 0 * *",
		"0 9 32 * *",
		"0 9 * 13 *",
		"0 9 * * 7",
		"a 9 * * *",
		// Comma lists are rejected by design; generated list-form
		// expressions never pass through this validator.
		"0 9 * * 1,3,5",
	}
	for _, expr := range invalid {
		require.False(t, ValidateCron(expr), "expected %q to fail validation", expr)
	}
}

func TestMatchesNowTimeGate(t *testing.T) {
	cs := CategorySchedule{Enabled: true, Time: "09:00"}
	at := func(hour, minute int) time.Time {
		return time.Date(2026, time.August, 25, hour, minute, 0, 0, time.UTC)
	}

	require.True(t, MatchesNow(CategoryDaily, cs, at(9, 0)))
	require.False(t, MatchesNow(CategoryDaily, cs, at(9, 1)), "minute must match exactly")
	require.False(t, MatchesNow(CategoryDaily, cs, at(10, 0)))

	cs.Enabled = false
	require.False(t, MatchesNow(CategoryDaily, cs, at(9, 0)))
}

func TestMatchesNowDayRules(t *testing.T) {
	// 2026-08-25 is a Tuesday; 2026-08-31 is the last day of August.
	tuesday := time.Date(2026, time.August, 25, 9, 0, 0, 0, time.UTC)
	lastOfMonth := time.Date(2026, time.August, 31, 9, 0, 0, 0, time.UTC)

	weekdaySet := CategorySchedule{Enabled: true, Time: "09:00", Rule: WeekdaySet{Days: []time.Weekday{time.Tuesday, time.Thursday}}}
	require.True(t, MatchesNow(CategoryDaily, weekdaySet, tuesday))
	require.False(t, MatchesNow(CategoryDaily, weekdaySet, lastOfMonth))

	weekly := CategorySchedule{Enabled: true, Time: "09:00", Rule: SingleWeekday{Day: time.Tuesday}}
	require.True(t, MatchesNow(CategoryWeekly, weekly, tuesday))

	// Direct matching honours the true last day, unlike the cron rendering.
	monthlyLast := CategorySchedule{Enabled: true, Time: "09:00", Rule: MonthDay{Last: true}}
	require.True(t, MatchesNow(CategoryMonthly, monthlyLast, lastOfMonth))
	require.False(t, MatchesNow(CategoryMonthly, monthlyLast, tuesday))

	leapDay := time.Date(2024, time.February, 29, 9, 0, 0, 0, time.UTC)
	require.True(t, MatchesNow(CategoryMonthly, monthlyLast, leapDay))

	annual := CategorySchedule{Enabled: true, Time: "09:00", Rule: YearDate{Month: time.August, Day: 25}}
	require.True(t, MatchesNow(CategoryAnnual, annual, tuesday))
	require.False(t, MatchesNow(CategoryAnnual, annual, lastOfMonth))
}
