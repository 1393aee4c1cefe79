// Package fingerprint computes deterministic content hashes for postings.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/jobpulse/ingestor/internal/ingest"
)

// Hasher implements ingest.Fingerprinter using SHA-256 over the fields that
// constitute meaningful change: title, company, location, description and
// compensation. Re-crawl metadata never feeds the hash, so unrelated churn
// does not trigger spurious updates.
type Hasher struct{}

// New returns a SHA-256 content hasher.
func New() *Hasher {
	return &Hasher{}
}

// Fingerprint returns a hex digest of the candidate's change-relevant fields.
func (h *Hasher) Fingerprint(c ingest.Candidate) string {
	var b strings.Builder
	for _, field := range []string{c.Title, c.Company, c.Location, c.Description} {
		b.WriteString(field)
		b.WriteByte('\x1f')
	}
	comp := c.Compensation
	b.WriteString(strconv.FormatFloat(comp.Min, 'f', -1, 64))
	b.WriteByte('\x1f')
	b.WriteString(strconv.FormatFloat(comp.Max, 'f', -1, 64))
	b.WriteByte('\x1f')
	b.WriteString(comp.Currency)
	b.WriteByte('\x1f')
	b.WriteString(comp.Period)
	b.WriteByte('\x1f')
	b.WriteString(comp.Raw)

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
