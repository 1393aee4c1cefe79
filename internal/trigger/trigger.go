// Package trigger coordinates run execution across entry points (HTTP and
// cron), guarding full runs with the optional run lock.
package trigger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jobpulse/ingestor/internal/ingest"
	"github.com/jobpulse/ingestor/internal/orchestrator"
)

// ErrRunInProgress signals that another full run currently holds the lock.
var ErrRunInProgress = errors.New("another run is in progress")

// Trigger starts orchestration runs. Full runs are mutually exclusive via
// the run lock; single-source runs are scoped enough to bypass it.
type Trigger struct {
	orch    *orchestrator.Orchestrator
	lock    ingest.RunLock
	lockTTL time.Duration
	logger  *zap.Logger
}

// New constructs a Trigger.
func New(orch *orchestrator.Orchestrator, lock ingest.RunLock, lockTTL time.Duration, logger *zap.Logger) *Trigger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Trigger{
		orch:    orch,
		lock:    lock,
		lockTTL: lockTTL,
		logger:  logger,
	}
}

// Sources lists the configured source names in report order.
func (t *Trigger) Sources() []string {
	return t.orch.Sources()
}

// RunAll executes one full orchestration run under the run lock.
func (t *Trigger) RunAll(ctx context.Context) (ingest.RunReport, error) {
	ok, err := t.lock.Acquire(ctx, t.lockTTL)
	if err != nil {
		return ingest.RunReport{}, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return ingest.RunReport{}, ErrRunInProgress
	}
	defer func() {
		if err := t.lock.Release(context.WithoutCancel(ctx)); err != nil {
			t.logger.Warn("release run lock failed", zap.Error(err))
		}
	}()

	return t.orch.RunAll(ctx), nil
}

// RunOne executes a single-source crawl.
func (t *Trigger) RunOne(ctx context.Context, source string) (ingest.CrawlOutcome, error) {
	return t.orch.RunOne(ctx, source)
}
