package ingest

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by stores when no row matches the lookup.
var ErrNotFound = errors.New("not found")

// Source fetches raw entries from one external provider and knows how to map
// its own raw shape into normalizer input. Implementations make outbound
// network calls only; they never touch the store. Adding a provider means
// adding a Source implementation, not touching the orchestrator.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]RawRecord, error)
	NormalizeOne(raw RawRecord) (RawPosting, error)
}

// PostingStore persists canonical postings. Each method is individually
// atomic; the gateway composes them into upsert semantics.
type PostingStore interface {
	FindByExternalID(ctx context.Context, source, externalID string) (JobPosting, error)
	Insert(ctx context.Context, posting JobPosting) (string, error)
	Update(ctx context.Context, id string, posting JobPosting) error
}

// CategoryLookup resolves a category by name or keyword match. Read-only;
// categories are owned by a separate administrative service.
type CategoryLookup interface {
	FindByNameOrKeyword(ctx context.Context, text string) (string, bool)
}

// Fingerprinter computes the content fingerprint used for change detection.
type Fingerprinter interface {
	Fingerprint(c Candidate) string
}

// Publisher pushes posting-ingested events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// SnapshotStore archives raw source payloads and returns a URI.
type SnapshotStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// RunLock guards against overlapping orchestration runs. Acquire returns
// false when another run holds the lock.
type RunLock interface {
	Acquire(ctx context.Context, ttl time.Duration) (bool, error)
	Release(ctx context.Context) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
