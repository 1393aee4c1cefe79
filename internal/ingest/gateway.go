package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Gateway decides insert vs. update vs. skip for normalized candidates,
// keyed by (source, external id) plus the content fingerprint.
type Gateway struct {
	store     PostingStore
	clock     Clock
	publisher Publisher
	topic     string
	logger    *zap.Logger
}

// NewGateway constructs a Gateway. The publisher is optional; when nil (or
// the topic is empty) no events are emitted.
func NewGateway(store PostingStore, clock Clock, publisher Publisher, topic string, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		store:     store,
		clock:     clock,
		publisher: publisher,
		topic:     topic,
		logger:    logger,
	}
}

// Upsert applies one candidate against the store. A store failure surfaces
// as UpsertFailed with the reason; it never panics and never affects sibling
// candidates.
func (g *Gateway) Upsert(ctx context.Context, c Candidate) (UpsertResult, error) {
	existing, err := g.store.FindByExternalID(ctx, c.Source, c.ExternalID)
	switch {
	case errors.Is(err, ErrNotFound):
		return g.insert(ctx, c)
	case err != nil:
		return UpsertFailed, fmt.Errorf("lookup %s/%s: %w", c.Source, c.ExternalID, err)
	}

	if existing.Fingerprint == c.Fingerprint {
		return UpsertUnchanged, nil
	}
	return g.update(ctx, existing, c)
}

func (g *Gateway) insert(ctx context.Context, c Candidate) (UpsertResult, error) {
	now := g.clock.Now().UTC()
	posting := JobPosting{
		Source:       c.Source,
		ExternalID:   c.ExternalID,
		Title:        c.Title,
		Company:      c.Company,
		Location:     c.Location,
		CategoryID:   c.CategoryID,
		Description:  c.Description,
		Compensation: c.Compensation,
		URL:          c.URL,
		Fingerprint:  c.Fingerprint,
		Status:       PostingStatusPublished,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	id, err := g.store.Insert(ctx, posting)
	if err != nil {
		return UpsertFailed, fmt.Errorf("insert %s/%s: %w", c.Source, c.ExternalID, err)
	}
	posting.ID = id
	g.publishEvent(ctx, posting, UpsertInserted)
	return UpsertInserted, nil
}

func (g *Gateway) update(ctx context.Context, existing JobPosting, c Candidate) (UpsertResult, error) {
	updated := existing
	updated.Title = c.Title
	updated.Company = c.Company
	updated.Location = c.Location
	updated.CategoryID = c.CategoryID
	updated.Description = c.Description
	updated.Compensation = c.Compensation
	updated.URL = c.URL
	updated.Fingerprint = c.Fingerprint
	// Status and CreatedAt are preserved across re-crawls.
	updated.UpdatedAt = g.clock.Now().UTC()

	if err := g.store.Update(ctx, existing.ID, updated); err != nil {
		return UpsertFailed, fmt.Errorf("update %s/%s: %w", c.Source, c.ExternalID, err)
	}
	g.publishEvent(ctx, updated, UpsertUpdated)
	return UpsertUpdated, nil
}

func (g *Gateway) publishEvent(ctx context.Context, posting JobPosting, result UpsertResult) {
	if g.publisher == nil || g.topic == "" {
		return
	}
	payload := map[string]any{
		"source":      posting.Source,
		"external_id": posting.ExternalID,
		"posting_id":  posting.ID,
		"result":      string(result),
		"fingerprint": posting.Fingerprint,
	}
	if _, err := g.publisher.Publish(ctx, g.topic, payload); err != nil {
		// Event delivery is best effort; the upsert already succeeded.
		g.logger.Warn("publish posting event failed",
			zap.String("source", posting.Source),
			zap.String("external_id", posting.ExternalID),
			zap.Error(err),
		)
	}
}
