package bot

import (
	"context"
	"sync"

	"orion-bot/metrics"
	"orion-bot/model"
	"orion-bot/scanner"
	"orion-bot/tasks/delivery"
	"orion-bot/utils"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Scheduler runs the expiry sweeps and the metrics endpoint.
type Scheduler struct {
	bot       model.Bot
	locks     *scanner.Sweep[model.LockRecord]
	reminders *delivery.Engine[model.Reminder]
	schedules *delivery.Engine[model.Schedule]
	log       zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewScheduler creates a new scheduler.
func NewScheduler(bot model.Bot, lockSource scanner.LockSource, expiry scanner.LockResolver, reminders *delivery.Engine[model.Reminder], schedules *delivery.Engine[model.Schedule]) *Scheduler {
	timeout := bot.GetConfig().SweepRecordTimeout
	return &Scheduler{
		bot:       bot,
		locks:     scanner.NewLockSweep(lockSource, expiry, timeout),
		reminders: reminders,
		schedules: schedules,
		log:       utils.Module("scheduler"),
	}
}

// Start re-arms pending deliveries and begins all recurring tasks.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.group != nil {
		return
	}

	cfg := s.bot.GetConfig()
	ctx, s.cancel = context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	s.group = g

	if n, err := s.reminders.Rearm(gctx); err != nil {
		s.log.Error().Err(err).Msg("Failed to re-arm reminders")
	} else {
		s.log.Info().Int("count", n).Msg("Re-armed pending reminders")
	}
	if n, err := s.schedules.Rearm(gctx); err != nil {
		s.log.Error().Err(err).Msg("Failed to re-arm schedules")
	} else {
		s.log.Info().Int("count", n).Msg("Re-armed pending schedules")
	}

	timeout := cfg.SweepRecordTimeout
	reminderSweep := scanner.NewDeliverySweep("reminders", s.reminders, timeout)
	scheduleSweep := scanner.NewDeliverySweep("schedules", s.schedules, timeout)

	g.Go(func() error {
		s.locks.Run(gctx, cfg.SweepInterval)
		return nil
	})
	g.Go(func() error {
		reminderSweep.Run(gctx, cfg.SweepInterval)
		return nil
	})
	g.Go(func() error {
		scheduleSweep.Run(gctx, cfg.SweepInterval)
		return nil
	})
	g.Go(func() error {
		if err := metrics.Serve(gctx, cfg.MetricsAddr); err != nil {
			s.log.Error().Err(err).Msg("Metrics endpoint stopped")
			utils.LogError(s.bot.GetSession(), cfg.LogChannelID, "Scheduler", "Metrics", err.Error())
		}
		return nil
	})

	s.log.Info().Dur("interval", scanner.ClampInterval(cfg.SweepInterval)).Msg("Scheduler started")
}

// Stop cancels the sweeps, waits for them to return and disarms every
// pending delivery timer. Pending records stay in the store for the next start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	if s.group != nil {
		s.group.Wait()
		s.group = nil
	}
	s.reminders.Stop()
	s.schedules.Stop()
	s.log.Info().Msg("Scheduler stopped")
}
