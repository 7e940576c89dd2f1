package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/wildcare/compliance-engine/internal/config"
)

// ErrSweepInProgress is returned when a sweep is requested while one is running
var ErrSweepInProgress = errors.New("readiness sweep already in progress")

// Sweeper recomputes readiness for every organisation
type Sweeper interface {
	SweepAll(ctx context.Context) (succeeded, failed int, err error)
}

// Scheduler runs the periodic readiness sweep
type Scheduler struct {
	config   config.SchedulerConfig
	logger   *zap.Logger
	cron     *cron.Cron
	sweeper  Sweeper
	sweeping sync.Mutex

	mu      sync.RWMutex
	entryID cron.EntryID
	lastRun time.Time
	lastErr error
}

// NewScheduler creates a scheduler for the configured cron expression
func NewScheduler(cfg config.SchedulerConfig, sweeper Sweeper, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		config:  cfg,
		logger:  logger,
		cron:    cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
		sweeper: sweeper,
	}

	entryID, err := s.cron.AddFunc(cfg.ReadinessCron, s.runScheduled)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule readiness sweep %q: %w", cfg.ReadinessCron, err)
	}
	s.entryID = entryID

	return s, nil
}

// Start starts the cron scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("Starting scheduler", zap.String("readiness_cron", s.config.ReadinessCron))
	s.cron.Start()
	return nil
}

// Stop waits for a running sweep to finish, or for ctx to expire
func (s *Scheduler) Stop(ctx context.Context) error {
	s.logger.Info("Stopping scheduler")

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler did not stop: %w", ctx.Err())
	}
}

// NextRun reports when the sweep will next fire
func (s *Scheduler) NextRun() time.Time {
	return s.cron.Entry(s.entryID).Next
}

// LastRun reports when the last sweep finished and its error, if any
func (s *Scheduler) LastRun() (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun, s.lastErr
}

// RunOnce runs a sweep immediately, bounded by the configured timeout
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if !s.sweeping.TryLock() {
		return ErrSweepInProgress
	}
	defer s.sweeping.Unlock()

	if s.config.SweepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.SweepTimeout)
		defer cancel()
	}

	start := time.Now()
	succeeded, failed, err := s.sweeper.SweepAll(ctx)

	s.mu.Lock()
	s.lastRun = time.Now().UTC()
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("readiness sweep failed: %w", err)
	}

	s.logger.Debug("Readiness sweep finished",
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)))
	return nil
}

func (s *Scheduler) runScheduled() {
	if err := s.RunOnce(context.Background()); err != nil {
		if errors.Is(err, ErrSweepInProgress) {
			s.logger.Warn("Skipping readiness sweep, previous run still in progress")
			return
		}
		s.logger.Error("Scheduled readiness sweep failed", zap.Error(err))
	}
}
