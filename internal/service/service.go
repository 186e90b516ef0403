package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"community-pulse/internal/config"
	"community-pulse/internal/expiry"
	"community-pulse/internal/fetcher"
	"community-pulse/internal/history"
	"community-pulse/internal/notify"
	"community-pulse/internal/schedule"
	"community-pulse/internal/scheduler"
	"community-pulse/internal/temporal"
	"community-pulse/internal/trend"
)

// lookbackDays maps a posting category to its trend look-back window.
var lookbackDays = map[schedule.Category]int{
	schedule.CategoryDaily:   1,
	schedule.CategoryWeekly:  7,
	schedule.CategoryMonthly: 30,
	schedule.CategoryAnnual:  365,
}

// Service orchestrates capture, trend posting, eviction, and the expiry
// check. Invocations are sequential; the record store is the only shared
// state, and every step is independently retryable -- a snapshot stored
// without its post going out is a recoverable condition, not corruption.
type Service struct {
	tick      *scheduler.Scheduler
	fetch     fetcher.MetricsFetcher
	store     *history.Store
	reporter  *trend.Reporter
	monitor   *expiry.Monitor
	notifiers map[string]notify.Notifier
	rules     schedule.Config
	logger    zerolog.Logger

	locker        history.AdvisoryLocker
	lockKey       int64
	retentionDays int
	evictChance   float64
	expiryKey     string
	expiryDate    string

	lastCapture temporal.Date
}

// Options bundle the service collaborators.
type Options struct {
	Tick      *scheduler.Scheduler
	Fetch     fetcher.MetricsFetcher
	Store     *history.Store
	Monitor   *expiry.Monitor
	Notifiers map[string]notify.Notifier
	Rules     schedule.Config
	Locker    history.AdvisoryLocker
}

// New constructs the engine service.
func New(cfg *config.Config, opts Options, logger zerolog.Logger) *Service {
	return &Service{
		tick:          opts.Tick,
		fetch:         opts.Fetch,
		store:         opts.Store,
		reporter:      trend.NewReporter(opts.Store),
		monitor:       opts.Monitor,
		notifiers:     opts.Notifiers,
		rules:         opts.Rules,
		logger:        logger.With().Str("component", "service").Logger(),
		locker:        opts.Locker,
		lockKey:       cfg.Scheduler.AdvisoryLockKey,
		retentionDays: cfg.Retention.Days,
		evictChance:   cfg.Retention.EvictChance,
		expiryKey:     cfg.Expiry.Key,
		expiryDate:    cfg.Expiry.Date,
	}
}

// Run starts the cron-driven posting jobs and the periodic capture tick,
// blocking until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.tick == nil {
		return fmt.Errorf("scheduler not configured")
	}

	engine, err := s.buildCron()
	if err != nil {
		return err
	}
	engine.Start()
	defer func() { <-engine.Stop().Done() }()

	return s.tick.Run(ctx, s.Tick)
}

// buildCron loads the generated schedule expressions into a cron engine.
// Conflicts are advisory: logged, never blocking.
func (s *Service) buildCron() (*cron.Cron, error) {
	generated, err := schedule.GenerateAll(s.rules)
	if err != nil {
		return nil, fmt.Errorf("generate schedules: %w", err)
	}

	for _, conflict := range schedule.DetectConflicts(generated) {
		s.logger.Warn().
			Str("channel", conflict.Channel).
			Str("cron", conflict.Expr).
			Str("first", string(conflict.First)).
			Str("second", string(conflict.Second)).
			Msg("schedules collide on the same channel and instant")
	}

	engine := cron.New(cron.WithLocation(time.UTC))
	for cat, channels := range generated {
		for channel, expr := range channels {
			cat, channel := cat, channel
			if _, addErr := engine.AddFunc(expr, func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				defer cancel()
				s.PostCategory(ctx, cat, channel)
			}); addErr != nil {
				return nil, fmt.Errorf("register %s/%s schedule: %w", cat, channel, addErr)
			}
			s.logger.Info().
				Str("category", string(cat)).
				Str("channel", channel).
				Str("cron", expr).
				Msg("posting schedule registered")
		}
	}
	return engine, nil
}

// Tick runs one engine invocation: daily capture with opportunistic
// eviction, then the daily expiry check. Failures inside a tick are logged
// and leave the loop running.
func (s *Service) Tick(ctx context.Context, now time.Time) error {
	unlock, proceed, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	if !proceed {
		s.logger.Debug().Msg("skip tick because advisory lock held elsewhere")
		return nil
	}
	if unlock != nil {
		defer unlock()
	}

	// Snapshot dates follow the host calendar, the same one Store uses for
	// look-backs and eviction. The tick instant arrives in UTC, so convert
	// before taking its date.
	today := temporal.DateOf(now.Local())
	if today != s.lastCapture {
		if err := s.capture(ctx, now, today); err != nil {
			s.logger.Error().Err(err).Msg("capture failed; will retry next tick")
		}
	}

	s.checkExpiry(ctx, now)
	return nil
}

func (s *Service) capture(ctx context.Context, now time.Time, today temporal.Date) error {
	if s.fetch == nil {
		return nil
	}

	metrics, err := s.fetch.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch metrics: %w", err)
	}

	snap := history.Snapshot{
		Date:          today,
		Timestamp:     now.UTC(),
		MemberCount:   metrics.MemberCount,
		TotalChannels: metrics.TotalChannels,
		TotalCapacity: metrics.TotalCapacity,
		BlockHeight:   metrics.BlockHeight,
		Source:        metrics.Source,
	}
	if err := s.store.Put(ctx, snap); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	s.lastCapture = today

	s.logger.Info().
		Str("date", today.String()).
		Int64("members", snap.MemberCount).
		Int64("channels", snap.TotalChannels).
		Str("capacity_btc", snap.TotalCapacity.String()).
		Msg("snapshot recorded")

	// Retention runs on a coin flip rather than a schedule of its own.
	if rand.Float64() < s.evictChance {
		if _, evictErr := s.store.EvictOlderThan(ctx, s.retentionDays); evictErr != nil {
			s.logger.Error().Err(evictErr).Msg("eviction failed")
		}
	}
	return nil
}

func (s *Service) checkExpiry(ctx context.Context, now time.Time) {
	if s.monitor == nil {
		return
	}

	result, due, err := s.monitor.DueWarning(ctx, now)
	if err != nil {
		s.logger.Error().Err(err).Msg("expiry check failed")
		return
	}
	if !due {
		return
	}

	text := notify.RenderExpiry(s.expiryKey, s.expiryDate, result)
	delivered := false
	for channel, notifier := range s.notifiers {
		if notifyErr := notifier.Notify(ctx, text); notifyErr != nil {
			s.logger.Error().Err(notifyErr).Str("channel", channel).Msg("expiry warning delivery failed")
			continue
		}
		delivered = true
	}

	if delivered {
		if markErr := s.monitor.MarkWarned(ctx, now); markErr != nil {
			s.logger.Error().Err(markErr).Msg("failed to record expiry dedup mark")
		}
	}
}

// PostCategory builds and delivers one category's trend report to one
// channel.
func (s *Service) PostCategory(ctx context.Context, cat schedule.Category, channel string) {
	lookback, ok := lookbackDays[cat]
	if !ok {
		lookback = 7
	}

	report, err := s.reporter.Report(ctx, lookback)
	if err != nil {
		s.logger.Error().Err(err).Str("category", string(cat)).Msg("report computation failed")
		return
	}
	if !report.Analysis.Available && report.Current == nil {
		s.logger.Warn().Str("category", string(cat)).Str("reason", report.Analysis.Reason).Msg("nothing to post")
		return
	}

	notifier, ok := s.notifiers[channel]
	if !ok {
		s.logger.Warn().Str("channel", channel).Msg("no notifier configured for channel")
		return
	}

	text := notify.RenderReport(cat, report)
	if err := notifier.Notify(ctx, text); err != nil {
		s.logger.Error().Err(err).
			Str("category", string(cat)).
			Str("channel", channel).
			Msg("post delivery failed")
		return
	}
	s.logger.Info().Str("category", string(cat)).Str("channel", channel).Msg("report posted")
}

// PostDue evaluates every schedule against now directly and posts those
// that match. This is the minute-exact invocation path; callers ticking
// hourly at minute 0 only ever fire :00 schedules.
func (s *Service) PostDue(ctx context.Context, now time.Time) int {
	posted := 0
	for _, cat := range schedule.Categories() {
		cs, ok := s.rules[cat]
		if !ok || !schedule.MatchesNow(cat, cs, now) {
			continue
		}
		for channel, ch := range cs.Channels {
			if !ch.Enabled {
				continue
			}
			s.PostCategory(ctx, cat, channel)
			posted++
		}
	}
	return posted
}

func (s *Service) acquireLock(ctx context.Context) (func(), bool, error) {
	if s.lockKey == 0 || s.locker == nil {
		return nil, true, nil
	}
	unlock, acquired, err := s.locker.TryAdvisoryLock(ctx, s.lockKey)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}
