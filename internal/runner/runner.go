// Package runner executes one source adapter end-to-end and produces its
// crawl outcome.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jobpulse/ingestor/internal/ingest"
	"github.com/jobpulse/ingestor/internal/metrics"
	"github.com/jobpulse/ingestor/internal/normalize"
)

// Upserter applies one normalized candidate against the store.
type Upserter interface {
	Upsert(ctx context.Context, c ingest.Candidate) (ingest.UpsertResult, error)
}

// Config controls Runner behavior.
type Config struct {
	// MaxFailureReasons bounds the reasons kept in an outcome. Every
	// failure is still counted; overflow detail goes to the log only.
	MaxFailureReasons int
	SnapshotPrefix    string
}

// Runner drives fetch -> normalize -> upsert for a single source. Record
// failures are counted, never propagated; a wholesale fetch failure yields
// a single fatal failure for the source.
type Runner struct {
	normalizer *normalize.Normalizer
	upserter   Upserter
	snapshots  ingest.SnapshotStore
	clock      ingest.Clock
	cfg        Config
	logger     *zap.Logger
}

// New constructs a Runner. The snapshot store is optional.
func New(
	normalizer *normalize.Normalizer,
	upserter Upserter,
	snapshots ingest.SnapshotStore,
	clock ingest.Clock,
	cfg Config,
	logger *zap.Logger,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFailureReasons <= 0 {
		cfg.MaxFailureReasons = 10
	}
	return &Runner{
		normalizer: normalizer,
		upserter:   upserter,
		snapshots:  snapshots,
		clock:      clock,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run executes one crawl for the given source and returns its outcome.
func (r *Runner) Run(ctx context.Context, src ingest.Source) ingest.CrawlOutcome {
	name := src.Name()
	start := r.clock.Now()
	outcome := ingest.CrawlOutcome{Source: name}

	records, err := src.Fetch(ctx)
	if err != nil {
		// Wholesale fetch failure: total unknown, one fatal failure.
		outcome.Failed = 1
		outcome.FailureReasons = []string{fmt.Sprintf("fetch: %v", err)}
		outcome.Duration = r.clock.Now().Sub(start)
		r.logger.Error("source fetch failed", zap.String("source", name), zap.Error(err))
		metrics.ObserveSource(name, "fetch_failed", outcome.Duration)
		return outcome
	}

	r.archiveSnapshot(ctx, name, records)

	for _, raw := range records {
		outcome.Total++
		if err := r.processRecord(ctx, src, raw); err != nil {
			outcome.Failed++
			r.recordFailure(&outcome, err)
			r.logger.Warn("record failed",
				zap.String("source", name),
				zap.String("external_id", raw.ExternalID),
				zap.Error(err),
			)
			continue
		}
		outcome.Succeeded++
	}

	outcome.Duration = r.clock.Now().Sub(start)
	metrics.ObserveSource(name, "completed", outcome.Duration)
	r.logger.Info("source crawl complete",
		zap.String("source", name),
		zap.Int("total", outcome.Total),
		zap.Int("succeeded", outcome.Succeeded),
		zap.Int("failed", outcome.Failed),
		zap.Duration("duration", outcome.Duration),
	)
	return outcome
}

func (r *Runner) processRecord(ctx context.Context, src ingest.Source, raw ingest.RawRecord) error {
	in, err := src.NormalizeOne(raw)
	if err != nil {
		metrics.ObservePosting(src.Name(), "malformed")
		return fmt.Errorf("map record %s: %w", raw.ExternalID, err)
	}
	candidate, err := r.normalizer.Normalize(ctx, in, src.Name())
	if err != nil {
		metrics.ObservePosting(src.Name(), "invalid")
		return err
	}
	result, err := r.upserter.Upsert(ctx, candidate)
	if err != nil {
		metrics.ObservePosting(src.Name(), string(ingest.UpsertFailed))
		return err
	}
	metrics.ObservePosting(src.Name(), string(result))
	return nil
}

func (r *Runner) recordFailure(outcome *ingest.CrawlOutcome, err error) {
	if len(outcome.FailureReasons) >= r.cfg.MaxFailureReasons {
		return
	}
	outcome.FailureReasons = append(outcome.FailureReasons, err.Error())
}

// archiveSnapshot stores the fetched records for replay/debugging. Best
// effort: archive failures never fail the crawl.
func (r *Runner) archiveSnapshot(ctx context.Context, name string, records []ingest.RawRecord) {
	if r.snapshots == nil || len(records) == 0 {
		return
	}
	data, err := json.Marshal(records)
	if err != nil {
		r.logger.Warn("snapshot marshal failed", zap.String("source", name), zap.Error(err))
		return
	}
	path := fmt.Sprintf("%s/%s/%s.json",
		strings.Trim(r.cfg.SnapshotPrefix, "/"),
		sanitizePath(name),
		r.clock.Now().UTC().Format("20060102T150405Z"),
	)
	if _, err := r.snapshots.PutObject(ctx, path, "application/json", data); err != nil {
		r.logger.Warn("snapshot archive failed", zap.String("source", name), zap.Error(err))
	}
}

func sanitizePath(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
