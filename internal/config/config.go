package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"community-pulse/internal/logging"
	"community-pulse/internal/temporal"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig                 `mapstructure:"app"`
	Logging   logging.Config            `mapstructure:"logging"`
	Database  DatabaseConfig            `mapstructure:"database"`
	Scheduler SchedulerConfig           `mapstructure:"scheduler"`
	Metrics   MetricsConfig             `mapstructure:"metrics"`
	Retention RetentionConfig           `mapstructure:"retention"`
	Schedules map[string]ScheduleConfig `mapstructure:"schedules"`
	Expiry    ExpiryConfig              `mapstructure:"expiry"`
	Notify    NotifyConfig              `mapstructure:"notify"`
	Export    ExportConfig              `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity. An empty DSN runs
// the engine on the in-memory store with persistence disabled.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// SchedulerConfig governs the engine's tick cadence.
type SchedulerConfig struct {
	TickInterval    time.Duration `mapstructure:"tick_interval"`
	AlignToInterval bool          `mapstructure:"align_to_interval"`
	AdvisoryLockKey int64         `mapstructure:"advisory_lock_key"`
	StartupDelay    time.Duration `mapstructure:"startup_delay"`
}

// MetricsConfig covers the upstream statistics endpoints.
type MetricsConfig struct {
	StatsURL       string        `mapstructure:"stats_url"`
	TipHeightURL   string        `mapstructure:"tip_height_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	Source         string        `mapstructure:"source"`
}

// RetentionConfig bounds snapshot age.
type RetentionConfig struct {
	Days        int     `mapstructure:"days"`
	EvictChance float64 `mapstructure:"evict_chance"`
}

// ScheduleConfig is the persisted shape of one category schedule. Exactly
// one of Days / DayOfWeek / DayOfMonth / Date is relevant per category
// kind; translation into a typed day rule happens in ScheduleRules.
type ScheduleConfig struct {
	Enabled    bool                     `mapstructure:"enabled"`
	Time       string                   `mapstructure:"time"`
	Days       []string                 `mapstructure:"days"`
	DayOfWeek  string                   `mapstructure:"day_of_week"`
	DayOfMonth string                   `mapstructure:"day_of_month"`
	Date       string                   `mapstructure:"date"`
	Channels   map[string]ChannelConfig `mapstructure:"channels"`
}

// ChannelConfig toggles one delivery target.
type ChannelConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// ExpiryConfig describes the monitored credential.
type ExpiryConfig struct {
	Key         string `mapstructure:"key"`
	Date        string `mapstructure:"date"`
	WarningDays []int  `mapstructure:"warning_days"`
}

// NotifyConfig routes outbound messages.
type NotifyConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig holds Telegram delivery parameters.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PULSEWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "pulsewatch")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("scheduler.tick_interval", "1h")
	v.SetDefault("scheduler.align_to_interval", true)
	v.SetDefault("scheduler.advisory_lock_key", int64(0x70756C73))
	v.SetDefault("scheduler.startup_delay", "0s")

	v.SetDefault("metrics.request_timeout", "10s")
	v.SetDefault("metrics.user_agent", "community-pulse/1.0")
	v.SetDefault("metrics.source", "community-api")

	v.SetDefault("retention.days", 400)
	v.SetDefault("retention.evict_chance", 0.1)

	v.SetDefault("expiry.key", "credential")
	v.SetDefault("expiry.warning_days", []int{30, 14, 7, 3, 1})

	v.SetDefault("notify.telegram.enabled", false)
	v.SetDefault("notify.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("export.max_data_points", 100000)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Scheduler.TickInterval <= 0 {
		return fmt.Errorf("scheduler.tick_interval must be greater than zero")
	}
	if c.Retention.Days <= 0 {
		return fmt.Errorf("retention.days must be greater than zero")
	}
	if c.Retention.EvictChance < 0 || c.Retention.EvictChance > 1 {
		return fmt.Errorf("retention.evict_chance must be within [0, 1]")
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	for name, sc := range c.Schedules {
		if !sc.Enabled {
			continue
		}
		if _, _, err := temporal.ParseTimeOfDay(sc.Time); err != nil {
			return fmt.Errorf("schedules.%s.time: %w", name, err)
		}
		// Weekday names must be rejected here: WeekdayIndex silently maps
		// unknown names to Sunday.
		for _, dayName := range sc.Days {
			if !temporal.KnownWeekday(dayName) {
				return fmt.Errorf("schedules.%s.days: unknown weekday %q", name, dayName)
			}
		}
		if sc.DayOfWeek != "" && !temporal.KnownWeekday(sc.DayOfWeek) {
			return fmt.Errorf("schedules.%s.day_of_week: unknown weekday %q", name, sc.DayOfWeek)
		}
		if sc.DayOfMonth != "" && !strings.EqualFold(sc.DayOfMonth, "last") {
			day, err := strconv.Atoi(sc.DayOfMonth)
			if err != nil || day < 1 || day > 31 {
				return fmt.Errorf("schedules.%s.day_of_month must be 1-31 or \"last\"", name)
			}
		}
		if sc.Date != "" {
			if _, _, err := temporal.ParseMonthDay(sc.Date); err != nil {
				return fmt.Errorf("schedules.%s.date: %w", name, err)
			}
		}
	}
	if c.Notify.Telegram.Enabled {
		if c.Notify.Telegram.BotToken == "" {
			return fmt.Errorf("notify.telegram.bot_token is required")
		}
		if c.Notify.Telegram.ChatID == "" {
			return fmt.Errorf("notify.telegram.chat_id is required")
		}
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}
