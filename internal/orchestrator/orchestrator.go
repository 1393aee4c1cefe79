// Package orchestrator fans a run out over every configured source and
// aggregates per-source outcomes into a run report.
package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jobpulse/ingestor/internal/ingest"
	"github.com/jobpulse/ingestor/internal/metrics"
)

// ErrUnknownSource is returned when a per-source trigger names a source
// that is not configured.
var ErrUnknownSource = fmt.Errorf("unknown source")

// SourceRunner executes one source crawl. Satisfied by *runner.Runner.
type SourceRunner interface {
	Run(ctx context.Context, src ingest.Source) ingest.CrawlOutcome
}

// Orchestrator runs every configured source with per-source isolation: a
// fatal error or panic in one source becomes that source's outcome and
// never prevents the remaining sources from running. It has no retry logic;
// retries belong to the external trigger's next cadence.
type Orchestrator struct {
	runner      SourceRunner
	sources     []ingest.Source
	concurrency int
	idGen       ingest.IDGenerator
	clock       ingest.Clock
	logger      *zap.Logger
}

// New constructs an Orchestrator over a fixed source list. Concurrency
// bounds the fan-out; values below one run sequentially.
func New(
	runner SourceRunner,
	sources []ingest.Source,
	concurrency int,
	idGen ingest.IDGenerator,
	clock ingest.Clock,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Orchestrator{
		runner:      runner,
		sources:     sources,
		concurrency: concurrency,
		idGen:       idGen,
		clock:       clock,
		logger:      logger,
	}
}

// Sources lists the configured source names in report order.
func (o *Orchestrator) Sources() []string {
	names := make([]string, len(o.sources))
	for i, src := range o.sources {
		names[i] = src.Name()
	}
	return names
}

// RunAll crawls every configured source and returns the aggregated report.
// Outcomes keep the configured order regardless of execution order.
func (o *Orchestrator) RunAll(ctx context.Context) ingest.RunReport {
	runID, err := o.idGen.NewID()
	if err != nil {
		// A run without an id is still a run; the report just lacks one.
		o.logger.Warn("run id generation failed", zap.Error(err))
	}
	report := ingest.RunReport{
		RunID:     runID,
		StartedAt: o.clock.Now().UTC(),
		Outcomes:  make([]ingest.CrawlOutcome, len(o.sources)),
	}
	o.logger.Info("run started", zap.String("run_id", runID), zap.Int("sources", len(o.sources)))

	sem := make(chan struct{}, o.concurrency)
	var wg sync.WaitGroup
	for i, src := range o.sources {
		wg.Add(1)
		go func(idx int, src ingest.Source) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			report.Outcomes[idx] = o.runIsolated(ctx, src)
		}(i, src)
	}
	wg.Wait()

	total, succeeded, failed := report.Totals()
	status := "succeeded"
	if failed > 0 {
		status = "partial"
	}
	metrics.ObserveRun(status)
	o.logger.Info("run complete",
		zap.String("run_id", runID),
		zap.Int("total", total),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed),
	)
	return report
}

// RunOne crawls a single configured source by name.
func (o *Orchestrator) RunOne(ctx context.Context, name string) (ingest.CrawlOutcome, error) {
	for _, src := range o.sources {
		if src.Name() == name {
			return o.runIsolated(ctx, src), nil
		}
	}
	return ingest.CrawlOutcome{}, fmt.Errorf("%w: %s", ErrUnknownSource, name)
}

// runIsolated is the source-level isolation seam: any panic escaping the
// runner converts into a failed outcome for that source alone.
func (o *Orchestrator) runIsolated(ctx context.Context, src ingest.Source) (outcome ingest.CrawlOutcome) {
	defer func() {
		if rec := recover(); rec != nil {
			o.logger.Error("source run panicked",
				zap.String("source", src.Name()),
				zap.Any("panic", rec),
			)
			outcome = ingest.CrawlOutcome{
				Source:         src.Name(),
				Failed:         1,
				FailureReasons: []string{fmt.Sprintf("panic: %v", rec)},
			}
		}
	}()
	return o.runner.Run(ctx, src)
}
