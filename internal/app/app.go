package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"community-pulse/internal/config"
	"community-pulse/internal/expiry"
	"community-pulse/internal/fetcher"
	"community-pulse/internal/history"
	"community-pulse/internal/notify"
	"community-pulse/internal/scheduler"
	"community-pulse/internal/service"
	"community-pulse/internal/temporal"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

// openRecords opens the configured record-store backend. With no DSN the
// in-memory backend is returned and nothing persists across restarts.
func (a *App) openRecords(ctx context.Context) (history.RecordStore, func(), error) {
	if a.Config.Database.DSN == "" {
		a.Logger.Warn().Msg("database.dsn not configured; using in-memory store")
		return history.NewMemoryStore(), nil, nil
	}

	pool, err := history.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	pg := history.NewPostgresStore(pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		pg.Close()
		return nil, nil, err
	}
	return pg, pg.Close, nil
}

func (a *App) newFetcher() fetcher.MetricsFetcher {
	if a.Config.Metrics.StatsURL == "" {
		return nil
	}
	return fetcher.NewCommunity(fetcher.CommunityOptions{
		StatsURL:     a.Config.Metrics.StatsURL,
		TipHeightURL: a.Config.Metrics.TipHeightURL,
		Timeout:      a.Config.Metrics.RequestTimeout,
		UserAgent:    a.Config.Metrics.UserAgent,
		Source:       a.Config.Metrics.Source,
	}, a.Logger)
}

func (a *App) newNotifiers() map[string]notify.Notifier {
	notifiers := make(map[string]notify.Notifier)
	if a.Config.Notify.Telegram.Enabled {
		tg := a.Config.Notify.Telegram
		notifiers["telegram"] = notify.NewTelegramNotifier(tg.BotToken, tg.ChatID, tg.APIBase, 10*time.Second, a.Logger)
	}
	return notifiers
}

func (a *App) newMonitor(records history.RecordStore) *expiry.Monitor {
	if a.Config.Expiry.Date == "" {
		return nil
	}
	state, _ := records.(expiry.NotifyState)
	return expiry.NewMonitor(a.Config.Expiry.Key, a.Config.Expiry.Date, a.Config.Expiry.WarningDays, state, a.Logger)
}

func (a *App) newService(records history.RecordStore, tick *scheduler.Scheduler) *service.Service {
	locker, _ := records.(history.AdvisoryLocker)
	return service.New(a.Config, service.Options{
		Tick:      tick,
		Fetch:     a.newFetcher(),
		Store:     history.NewStore(records, a.Logger),
		Monitor:   a.newMonitor(records),
		Notifiers: a.newNotifiers(),
		Rules:     a.Config.ScheduleRules(),
		Locker:    locker,
	}, a.Logger)
}

// Run executes the long-running engine.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	records, closeRecords, err := a.openRecords(ctx)
	if err != nil {
		return err
	}
	if closeRecords != nil {
		defer closeRecords()
	}

	tick := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.TickInterval,
		AlignToStart: a.Config.Scheduler.AlignToInterval,
		StartupDelay: a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	svc := a.newService(records, tick)

	a.Logger.Info().Msg("starting community pulse engine")
	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("engine terminated with error")
		return err
	}

	a.Logger.Info().Msg("engine stopped")
	return nil
}

// PostDue evaluates every schedule against the current minute and posts
// any that match.
func (a *App) PostDue(ctx context.Context) error {
	records, closeRecords, err := a.openRecords(ctx)
	if err != nil {
		return err
	}
	if closeRecords != nil {
		defer closeRecords()
	}

	svc := a.newService(records, nil)
	posted := svc.PostDue(ctx, time.Now())
	a.Logger.Info().Int("posted", posted).Msg("due schedules evaluated")
	return nil
}

// ExportOptions hold parameters for exporting historical snapshots.
type ExportOptions struct {
	From      *temporal.Date
	To        *temporal.Date
	CSVPath   string
	PNGPath   string
	MaxPoints int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit int
}

// ReportOptions configure the report command.
type ReportOptions struct {
	LookbackDays int
}

// SimulateOptions feed a synthetic reading through the report path.
type SimulateOptions struct {
	Members  int64
	Channels int64
	Capacity float64
}
