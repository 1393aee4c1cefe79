package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jobpulse/ingestor/internal/fingerprint"
	"github.com/jobpulse/ingestor/internal/ingest"
	"github.com/jobpulse/ingestor/internal/normalize"
	"github.com/jobpulse/ingestor/internal/store/memory"
)

// Exercises fetch -> normalize -> upsert against the real gateway and the
// in-memory store.
func newPipeline(t *testing.T) (*Runner, *memory.PostingStore, *fakeClock) {
	t.Helper()
	store := memory.NewPostingStore()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	gateway := ingest.NewGateway(store, clock, nil, "", nil)
	normalizer := normalize.New(memory.NewCategoryLookup(memory.DefaultCategories()), fingerprint.New())
	return New(normalizer, gateway, nil, clock, Config{}, nil), store, clock
}

// Re-crawling identical data changes nothing: no new rows, no new writes.
func TestPipelineIdempotentRecrawl(t *testing.T) {
	t.Parallel()

	r, store, _ := newPipeline(t)
	src := &fakeSource{name: "greenhouse:acme", records: []ingest.RawRecord{
		record("1", "Backend Engineer"),
		record("2", "Designer"),
	}}

	first := r.Run(context.Background(), src)
	require.Equal(t, 2, first.Succeeded)
	require.Len(t, store.All(), 2)

	firstState := make(map[string]ingest.JobPosting)
	for _, p := range store.All() {
		firstState[p.ExternalID] = p
	}

	second := r.Run(context.Background(), src)
	require.Equal(t, 2, second.Succeeded)
	require.Equal(t, 0, second.Failed)
	require.Len(t, store.All(), 2)
	for _, p := range store.All() {
		prev := firstState[p.ExternalID]
		require.Equal(t, prev.UpdatedAt, p.UpdatedAt)
		require.Equal(t, prev.Fingerprint, p.Fingerprint)
	}
}

// A content change updates the row in place: same surrogate id, same
// CreatedAt, advanced UpdatedAt.
func TestPipelineChangePropagation(t *testing.T) {
	t.Parallel()

	r, store, _ := newPipeline(t)
	src := &fakeSource{name: "greenhouse:acme", records: []ingest.RawRecord{
		record("1", "Backend Engineer"),
	}}

	_ = r.Run(context.Background(), src)
	before := store.All()[0]

	src.records[0].Fields["title"] = "Senior Backend Engineer"
	outcome := r.Run(context.Background(), src)
	require.Equal(t, 1, outcome.Succeeded)

	require.Len(t, store.All(), 1)
	after := store.All()[0]
	require.Equal(t, before.ID, after.ID)
	require.Equal(t, "Senior Backend Engineer", after.Title)
	require.Equal(t, before.CreatedAt, after.CreatedAt)
	require.True(t, after.UpdatedAt.After(before.UpdatedAt))
	require.NotEqual(t, before.Fingerprint, after.Fingerprint)
}

// The same external id under two different sources yields two rows.
func TestPipelineSourcesDoNotCollide(t *testing.T) {
	t.Parallel()

	r, store, _ := newPipeline(t)
	a := &fakeSource{name: "greenhouse:acme", records: []ingest.RawRecord{record("1", "Backend Engineer")}}
	b := &fakeSource{name: "lever:acme", records: []ingest.RawRecord{record("1", "Backend Engineer")}}

	_ = r.Run(context.Background(), a)
	_ = r.Run(context.Background(), b)
	require.Len(t, store.All(), 2)
}

// Postings gain the published status and a resolved category on first insert.
func TestPipelineInsertDefaults(t *testing.T) {
	t.Parallel()

	r, store, _ := newPipeline(t)
	src := &fakeSource{name: "greenhouse:acme", records: []ingest.RawRecord{
		record("1", "Backend Engineer"),
	}}

	_ = r.Run(context.Background(), src)
	p := store.All()[0]
	require.Equal(t, ingest.PostingStatusPublished, p.Status)
	require.Equal(t, "engineering", p.CategoryID)
	require.NotEmpty(t, p.Fingerprint)
	require.False(t, p.CreatedAt.IsZero())
}
