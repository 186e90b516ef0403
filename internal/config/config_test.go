package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"community-pulse/internal/schedule"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  name: pulsewatch\n"))
	require.NoError(t, err)

	require.Equal(t, time.Hour, cfg.Scheduler.TickInterval)
	require.True(t, cfg.Scheduler.AlignToInterval)
	require.Equal(t, 400, cfg.Retention.Days)
	require.InDelta(t, 0.1, cfg.Retention.EvictChance, 1e-9)
	require.Equal(t, []int{30, 14, 7, 3, 1}, cfg.Expiry.WarningDays)
	require.Equal(t, 100000, cfg.Export.MaxDataPoints)
	require.False(t, cfg.Notify.Telegram.Enabled)
}

func TestLoadFullFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
scheduler:
  tick_interval: 30m
retention:
  days: 200
schedules:
  daily:
    enabled: true
    time: "09:00"
    days: [monday, wednesday, friday]
    channels:
      telegram:
        enabled: true
  weekly:
    enabled: true
    time: "18:30"
    day_of_week: sunday
  monthly:
    enabled: true
    time: "12:00"
    day_of_month: last
  annual:
    enabled: true
    time: "00:00"
    date: "12-31"
expiry:
  key: vanity-domain
  date: "2027-03-01"
  warning_days: [14, 7, 1]
`))
	require.NoError(t, err)

	require.Equal(t, 30*time.Minute, cfg.Scheduler.TickInterval)
	require.Equal(t, 200, cfg.Retention.Days)
	require.Equal(t, "vanity-domain", cfg.Expiry.Key)
	require.Equal(t, []int{14, 7, 1}, cfg.Expiry.WarningDays)
	require.Len(t, cfg.Schedules, 4)
	require.Equal(t, []string{"monday", "wednesday", "friday"}, cfg.Schedules["daily"].Days)
	require.Equal(t, "last", cfg.Schedules["monthly"].DayOfMonth)
}

func TestValidateRejectsBadTime(t *testing.T) {
	_, err := Load(writeConfig(t, `
schedules:
  daily:
    enabled: true
    time: "9am"
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "schedules.daily.time")
}

func TestValidateIgnoresDisabledSchedules(t *testing.T) {
	// Disabled blocks may carry stale values.
	_, err := Load(writeConfig(t, `
schedules:
  daily:
    enabled: false
    time: "whenever"
`))
	require.NoError(t, err)
}

func TestValidateRejectsUnknownWeekdays(t *testing.T) {
	// A typoed weekday must fail loudly, not silently become Sunday.
	_, err := Load(writeConfig(t, `
schedules:
  daily:
    enabled: true
    time: "09:00"
    days: [monday, wendsday]
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown weekday")
	require.Contains(t, err.Error(), "wendsday")

	_, err = Load(writeConfig(t, `
schedules:
  weekly:
    enabled: true
    time: "09:00"
    day_of_week: someday
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "schedules.weekly.day_of_week")

	// Empty day_of_week stays valid and falls back to the default day.
	_, err = Load(writeConfig(t, `
schedules:
  weekly:
    enabled: true
    time: "09:00"
`))
	require.NoError(t, err)
}

func TestValidateRejectsBadAnnualDate(t *testing.T) {
	_, err := Load(writeConfig(t, `
schedules:
  annual:
    enabled: true
    time: "00:00"
    date: "13-45"
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "schedules.annual.date")

	// No date configured is valid; the rule defaults to December 31.
	_, err = Load(writeConfig(t, `
schedules:
  annual:
    enabled: true
    time: "00:00"
`))
	require.NoError(t, err)
}

func TestValidateDayOfMonth(t *testing.T) {
	_, err := Load(writeConfig(t, `
schedules:
  monthly:
    enabled: true
    time: "12:00"
    day_of_month: "32"
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "day_of_month")
}

func TestValidateTelegramRequiresCredentials(t *testing.T) {
	_, err := Load(writeConfig(t, `
notify:
  telegram:
    enabled: true
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "bot_token")
}

func TestScheduleRulesTranslation(t *testing.T) {
	cfg := &Config{
		Schedules: map[string]ScheduleConfig{
			"daily": {
				Enabled:  true,
				Time:     "09:00",
				Days:     []string{"monday", "friday"},
				Channels: map[string]ChannelConfig{"telegram": {Enabled: true}},
			},
			"weekly": {
				Enabled:   true,
				Time:      "18:30",
				DayOfWeek: "sunday",
			},
			"monthly": {
				Enabled:    true,
				Time:       "12:00",
				DayOfMonth: "last",
			},
			"annual": {
				Enabled: true,
				Time:    "00:00",
				Date:    "06-15",
			},
		},
	}

	rules := cfg.ScheduleRules()
	require.Len(t, rules, 4)

	daily := rules[schedule.CategoryDaily]
	require.True(t, daily.Enabled)
	require.Equal(t, schedule.WeekdaySet{Days: []time.Weekday{time.Monday, time.Friday}}, daily.Rule)
	require.True(t, daily.Channels["telegram"].Enabled)

	require.Equal(t, schedule.SingleWeekday{Day: time.Sunday}, rules[schedule.CategoryWeekly].Rule)
	require.Equal(t, schedule.MonthDay{Last: true}, rules[schedule.CategoryMonthly].Rule)
	require.Equal(t, schedule.YearDate{Month: time.June, Day: 15}, rules[schedule.CategoryAnnual].Rule)
}

func TestScheduleRulesFallbacks(t *testing.T) {
	cfg := &Config{
		Schedules: map[string]ScheduleConfig{
			"daily":   {Enabled: true, Time: "09:00"},
			"monthly": {Enabled: true, Time: "12:00", DayOfMonth: "garbage"},
			"annual":  {Enabled: true, Time: "00:00", Date: "not-a-date"},
			"hourly":  {Enabled: true, Time: "00:00"},
		},
	}

	rules := cfg.ScheduleRules()

	require.Equal(t, schedule.EveryDay{}, rules[schedule.CategoryDaily].Rule)
	require.Equal(t, schedule.MonthDay{Day: 1}, rules[schedule.CategoryMonthly].Rule)
	require.Equal(t, schedule.YearDate{Month: time.December, Day: 31}, rules[schedule.CategoryAnnual].Rule)

	// Unknown category names never make it into the rule set.
	_, ok := rules[schedule.Category("hourly")]
	require.False(t, ok)
}

func TestResolveMaxPoints(t *testing.T) {
	cfg := &Config{Export: ExportConfig{MaxDataPoints: 500}}
	require.Equal(t, 500, cfg.ResolveMaxPoints(0))
	require.Equal(t, 50, cfg.ResolveMaxPoints(50))
}
