// Package scheduler runs the monthly pipeline on cron schedules, guarded by a
// storage-backed lock so only one process instance executes each run.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/clearvest/payout_engine/internal/core/domain"
	portsrepo "github.com/clearvest/payout_engine/internal/core/ports/repositories"
	portssvc "github.com/clearvest/payout_engine/internal/core/ports/services"
	"github.com/clearvest/payout_engine/internal/middleware"
	"github.com/clearvest/payout_engine/internal/platform/config"
	"github.com/robfig/cron/v3"
)

// Scheduler wires the revenue and dividend engines to their cron schedules.
type Scheduler struct {
	cron     *cron.Cron
	cfg      *config.Config
	services *portssvc.ServiceContainer
	locks    portsrepo.LockRepository
	logger   *slog.Logger
}

// New creates the scheduler. Jobs are registered on Start.
func New(cfg *config.Config, services *portssvc.ServiceContainer, locks portsrepo.LockRepository, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:     cron.New(),
		cfg:      cfg,
		services: services,
		locks:    locks,
		logger:   logger,
	}
}

// Start registers the cron entries and launches the scheduler loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.RevenueCronSpec, s.runRevenue); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.DividendCronSpec, s.runDividends); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("Scheduler started",
		slog.String("revenue_spec", s.cfg.RevenueCronSpec),
		slog.String("dividend_spec", s.cfg.DividendCronSpec),
	)
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) runRevenue() {
	s.runLocked(s.cfg.RevenueJobLockKey, func(ctx context.Context, period domain.Period) {
		result, err := s.services.Revenue.Calculate(ctx, period)
		if err != nil {
			s.logger.Error("Scheduled revenue run failed",
				slog.String("period", period.String()),
				slog.String("error", err.Error()),
			)
			return
		}
		s.logger.Info("Scheduled revenue run finished",
			slog.String("period", period.String()),
			slog.Int("succeeded", result.Succeeded),
			slog.Int("skipped", result.Skipped),
			slog.Int("failed", result.Failed),
		)
	})
}

func (s *Scheduler) runDividends() {
	s.runLocked(s.cfg.DividendJobLockKey, func(ctx context.Context, period domain.Period) {
		result, err := s.services.Dividend.Distribute(ctx, period)
		if err != nil {
			s.logger.Error("Scheduled dividend run failed",
				slog.String("period", period.String()),
				slog.String("error", err.Error()),
			)
			return
		}
		s.logger.Info("Scheduled dividend run finished",
			slog.String("period", period.String()),
			slog.Int("succeeded", result.Succeeded),
			slog.Int("skipped", result.Skipped),
			slog.Int("failed", result.Failed),
		)
	})
}

// runLocked acquires the named cross-process lock, runs fn over the previous
// calendar month, and releases the lock. Losing the lock race is an expected
// outcome in multi-instance deployments, logged and skipped.
func (s *Scheduler) runLocked(lockKey string, fn func(ctx context.Context, period domain.Period)) {
	ctx := middleware.WithLogger(context.Background(), s.logger.With(slog.String("lock_key", lockKey)))

	acquired, err := s.locks.AcquireLock(ctx, lockKey, s.cfg.SchedulerLockTTL)
	if err != nil {
		s.logger.Error("Failed to acquire scheduler lock",
			slog.String("lock_key", lockKey),
			slog.String("error", err.Error()),
		)
		return
	}
	if !acquired {
		s.logger.Info("Scheduler lock held elsewhere, skipping run", slog.String("lock_key", lockKey))
		return
	}
	defer func() {
		if err := s.locks.ReleaseLock(ctx, lockKey); err != nil {
			s.logger.Warn("Failed to release scheduler lock",
				slog.String("lock_key", lockKey),
				slog.String("error", err.Error()),
			)
		}
	}()

	fn(ctx, domain.PreviousPeriod(time.Now().UTC()))
}
