// Package normalize maps source-specific raw records into canonical
// posting candidates.
package normalize

import (
	"context"
	"fmt"
	"strings"

	"github.com/jobpulse/ingestor/internal/ingest"
)

// UncategorizedID is the fallback category applied when no lookup matches.
// Category resolution never fails a record on its own.
const UncategorizedID = "uncategorized"

// Error marks a record that failed required-field validation. It is counted
// as one failed unit within the source outcome, never as a fatal error.
type Error struct {
	Source     string
	ExternalID string
	Reason     string
}

func (e *Error) Error() string {
	return fmt.Sprintf("normalize %s/%s: %s", e.Source, e.ExternalID, e.Reason)
}

// Normalizer validates and canonicalizes adapter output into candidates.
type Normalizer struct {
	categories    ingest.CategoryLookup
	fingerprinter ingest.Fingerprinter
}

// New constructs a Normalizer.
func New(categories ingest.CategoryLookup, fingerprinter ingest.Fingerprinter) *Normalizer {
	return &Normalizer{
		categories:    categories,
		fingerprinter: fingerprinter,
	}
}

// Normalize trims and validates required fields, resolves the category and
// computes the content fingerprint. A validation failure returns *Error.
func (n *Normalizer) Normalize(ctx context.Context, in ingest.RawPosting, sourceName string) (ingest.Candidate, error) {
	c := ingest.Candidate{
		Source:       sourceName,
		ExternalID:   strings.TrimSpace(in.ExternalID),
		Title:        strings.TrimSpace(in.Title),
		Company:      strings.TrimSpace(in.Company),
		Location:     canonicalLocation(in.Location),
		Description:  strings.TrimSpace(in.Description),
		Compensation: in.Compensation,
		URL:          strings.TrimSpace(in.URL),
	}

	if c.ExternalID == "" {
		return ingest.Candidate{}, &Error{Source: sourceName, ExternalID: in.ExternalID, Reason: "missing external id"}
	}
	if c.Title == "" {
		return ingest.Candidate{}, &Error{Source: sourceName, ExternalID: c.ExternalID, Reason: "missing title"}
	}
	if c.Company == "" {
		return ingest.Candidate{}, &Error{Source: sourceName, ExternalID: c.ExternalID, Reason: "missing company"}
	}
	if c.URL == "" {
		return ingest.Candidate{}, &Error{Source: sourceName, ExternalID: c.ExternalID, Reason: "missing posting url"}
	}

	c.CategoryID = n.resolveCategory(ctx, c.Title, c.Description)
	c.Fingerprint = n.fingerprinter.Fingerprint(c)
	return c, nil
}

// resolveCategory matches the title first, then the description. An
// unresolved category falls back to UncategorizedID.
func (n *Normalizer) resolveCategory(ctx context.Context, title, description string) string {
	if n.categories == nil {
		return UncategorizedID
	}
	if id, ok := n.categories.FindByNameOrKeyword(ctx, title); ok {
		return id
	}
	if id, ok := n.categories.FindByNameOrKeyword(ctx, description); ok {
		return id
	}
	return UncategorizedID
}

func canonicalLocation(location string) string {
	location = strings.TrimSpace(location)
	if strings.EqualFold(location, "remote") {
		return "remote"
	}
	return location
}
