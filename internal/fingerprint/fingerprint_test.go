package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jobpulse/ingestor/internal/ingest"
)

func baseCandidate() ingest.Candidate {
	return ingest.Candidate{
		Source:      "lever:acme",
		ExternalID:  "abc",
		Title:       "Data Engineer",
		Company:     "Acme",
		Location:    "Berlin",
		Description: "Pipelines.",
		Compensation: ingest.Compensation{
			Min:      90000,
			Max:      120000,
			Currency: "EUR",
			Period:   "year",
		},
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	t.Parallel()

	h := New()
	c := baseCandidate()
	require.Equal(t, h.Fingerprint(c), h.Fingerprint(c))
	require.Len(t, h.Fingerprint(c), 64)
}

func TestFingerprintChangesWithContent(t *testing.T) {
	t.Parallel()

	h := New()
	base := baseCandidate()

	changedTitle := base
	changedTitle.Title = "Senior Data Engineer"
	require.NotEqual(t, h.Fingerprint(base), h.Fingerprint(changedTitle))

	changedComp := base
	changedComp.Compensation.Max = 130000
	require.NotEqual(t, h.Fingerprint(base), h.Fingerprint(changedComp))
}

// Identity and crawl metadata stay out of the hash so a re-crawl with the
// same content never looks like a change.
func TestFingerprintIgnoresIdentityFields(t *testing.T) {
	t.Parallel()

	h := New()
	base := baseCandidate()

	other := base
	other.Source = "greenhouse:acme"
	other.ExternalID = "999"
	other.URL = "https://elsewhere.example/999"
	other.CategoryID = "data"
	require.Equal(t, h.Fingerprint(base), h.Fingerprint(other))
}

// Field boundaries are unambiguous: moving text between adjacent fields
// must change the digest.
func TestFingerprintFieldBoundaries(t *testing.T) {
	t.Parallel()

	h := New()
	a := ingest.Candidate{Title: "ab", Company: "c"}
	b := ingest.Candidate{Title: "a", Company: "bc"}
	require.NotEqual(t, h.Fingerprint(a), h.Fingerprint(b))
}
