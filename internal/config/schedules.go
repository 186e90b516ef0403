package config

import (
	"strconv"
	"strings"
	"time"

	"community-pulse/internal/schedule"
	"community-pulse/internal/temporal"
)

// ScheduleRules translates the persisted string-keyed schedule shape into
// the engine's typed day rules. Only the field relevant to each category
// kind is inspected; unknown category names are ignored.
func (c *Config) ScheduleRules() schedule.Config {
	rules := make(schedule.Config)

	for _, cat := range schedule.Categories() {
		sc, ok := c.Schedules[string(cat)]
		if !ok {
			continue
		}
		rules[cat] = schedule.CategorySchedule{
			Enabled:  sc.Enabled,
			Time:     sc.Time,
			Rule:     dayRuleFor(cat, sc),
			Channels: channelSet(sc.Channels),
		}
	}
	return rules
}

func dayRuleFor(cat schedule.Category, sc ScheduleConfig) schedule.DayRule {
	switch cat {
	case schedule.CategoryDaily:
		if len(sc.Days) == 0 {
			return schedule.EveryDay{}
		}
		days := make([]time.Weekday, len(sc.Days))
		for i, name := range sc.Days {
			days[i] = time.Weekday(temporal.WeekdayIndex(name))
		}
		return schedule.WeekdaySet{Days: days}

	case schedule.CategoryWeekly:
		return schedule.SingleWeekday{Day: time.Weekday(temporal.WeekdayIndex(sc.DayOfWeek))}

	case schedule.CategoryMonthly:
		if strings.EqualFold(sc.DayOfMonth, "last") {
			return schedule.MonthDay{Last: true}
		}
		day, err := strconv.Atoi(sc.DayOfMonth)
		if err != nil || day < 1 || day > 31 {
			day = 1
		}
		return schedule.MonthDay{Day: day}

	case schedule.CategoryAnnual:
		if sc.Date != "" {
			if month, day, err := temporal.ParseMonthDay(sc.Date); err == nil {
				return schedule.YearDate{Month: month, Day: day}
			}
		}
		return schedule.YearDate{Month: time.December, Day: 31}
	}
	return schedule.EveryDay{}
}

func channelSet(channels map[string]ChannelConfig) map[string]schedule.ChannelConfig {
	out := make(map[string]schedule.ChannelConfig, len(channels))
	for name, ch := range channels {
		out[name] = schedule.ChannelConfig{Enabled: ch.Enabled}
	}
	return out
}
