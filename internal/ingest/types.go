// Package ingest defines core types shared across the ingestion pipeline.
package ingest

import (
	"time"
)

// PostingStatus represents the lifecycle state of a stored job posting.
type PostingStatus string

// Posting status values persisted in the posting store. Transitions move
// forward only (draft -> published -> archived) except an explicit republish.
const (
	PostingStatusDraft     PostingStatus = "DRAFT"
	PostingStatusPublished PostingStatus = "PUBLISHED"
	PostingStatusArchived  PostingStatus = "ARCHIVED"
)

// Compensation captures structured salary information when a source provides
// it. Raw holds the original free-text form when no structure is available.
type Compensation struct {
	Min      float64 `json:"min,omitempty"`
	Max      float64 `json:"max,omitempty"`
	Currency string  `json:"currency,omitempty"`
	Period   string  `json:"period,omitempty"`
	Raw      string  `json:"raw,omitempty"`
}

// IsZero reports whether no compensation information is present.
func (c Compensation) IsZero() bool {
	return c.Min == 0 && c.Max == 0 && c.Currency == "" && c.Period == "" && c.Raw == ""
}

// JobPosting is the canonical persisted entity. The (Source, ExternalID)
// pair is the true external identity and is unique across the store; ID is
// the store-assigned surrogate.
type JobPosting struct {
	ID           string        `json:"id"`
	Source       string        `json:"source"`
	ExternalID   string        `json:"external_id"`
	Title        string        `json:"title"`
	Company      string        `json:"company"`
	Location     string        `json:"location"`
	CategoryID   string        `json:"category_id"`
	Description  string        `json:"description"`
	Compensation Compensation  `json:"compensation,omitempty"`
	URL          string        `json:"url"`
	Fingerprint  string        `json:"fingerprint"`
	Status       PostingStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// RawRecord is one source entry before normalization. Fields holds the
// source-specific payload keyed by the adapter's own field names.
type RawRecord struct {
	ExternalID string
	Fields     map[string]string
}

// RawPosting is the source-agnostic field set an adapter extracts from one
// RawRecord. The shared normalizer validates and canonicalizes it.
type RawPosting struct {
	ExternalID   string
	Title        string
	Company      string
	Location     string
	Description  string
	Compensation Compensation
	URL          string
}

// Candidate is a normalized posting ready for the upsert gateway.
type Candidate struct {
	Source       string
	ExternalID   string
	Title        string
	Company      string
	Location     string
	CategoryID   string
	Description  string
	Compensation Compensation
	URL          string
	Fingerprint  string
}

// UpsertResult classifies the outcome of one candidate upsert.
type UpsertResult string

// Upsert result values.
const (
	UpsertInserted  UpsertResult = "inserted"
	UpsertUpdated   UpsertResult = "updated"
	UpsertUnchanged UpsertResult = "unchanged"
	UpsertFailed    UpsertResult = "failed"
)

// CrawlOutcome is the per-source result of one run. FailureReasons is
// bounded for diagnostics; the full detail goes to the log.
type CrawlOutcome struct {
	Source         string        `json:"source"`
	Total          int           `json:"total"`
	Succeeded      int           `json:"succeeded"`
	Failed         int           `json:"failed"`
	FailureReasons []string      `json:"failure_reasons,omitempty"`
	Duration       time.Duration `json:"duration"`
}

// RunReport aggregates the outcomes of one orchestration run. Outcomes keep
// the configured source order regardless of execution order.
type RunReport struct {
	RunID     string         `json:"run_id"`
	StartedAt time.Time      `json:"started_at"`
	Outcomes  []CrawlOutcome `json:"outcomes"`
}

// Totals sums the per-source counters across the report.
func (r RunReport) Totals() (total, succeeded, failed int) {
	for _, o := range r.Outcomes {
		total += o.Total
		succeeded += o.Succeeded
		failed += o.Failed
	}
	return total, succeeded, failed
}
