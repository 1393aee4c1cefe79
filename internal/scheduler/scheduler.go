// Package scheduler wires up the cron cadence that periodically starts a
// full ingestion run.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/jobpulse/ingestor/internal/trigger"
)

// Config controls the cadence.
type Config struct {
	// Spec is a robfig/cron expression, e.g. "@every 6h".
	Spec string
	// RunOnStart fires one run immediately after Start.
	RunOnStart bool
	// RunBudget bounds the wall clock of one scheduled run.
	RunBudget time.Duration
}

// Scheduler wraps robfig/cron and drives the trigger on each tick.
type Scheduler struct {
	cron    *cron.Cron
	trigger *trigger.Trigger
	cfg     Config
	logger  *zap.Logger
}

// New creates a Scheduler.
func New(trg *trigger.Trigger, cfg Config, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RunBudget <= 0 {
		cfg.RunBudget = 30 * time.Minute
	}
	return &Scheduler{
		cron:    cron.New(),
		trigger: trg,
		cfg:     cfg,
		logger:  logger,
	}
}

// Start registers the cron entry and starts the scheduler. With RunOnStart
// set, one run fires immediately without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.Spec, func() { s.runOnce(ctx) }); err != nil {
		return fmt.Errorf("cron add func: %w", err)
	}
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.cfg.Spec))

	if s.cfg.RunOnStart {
		go s.runOnce(ctx)
	}
	return nil
}

// Stop shuts the scheduler down and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.cfg.RunBudget)
	defer cancel()

	report, err := s.trigger.RunAll(runCtx)
	if err != nil {
		if errors.Is(err, trigger.ErrRunInProgress) {
			s.logger.Info("scheduled run skipped, another run in progress")
			return
		}
		s.logger.Error("scheduled run failed", zap.Error(err))
		return
	}
	total, succeeded, failed := report.Totals()
	s.logger.Info("scheduled run complete",
		zap.String("run_id", report.RunID),
		zap.Int("total", total),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed),
	)
}
