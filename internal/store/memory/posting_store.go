// Package memory provides in-memory store implementations for development
// and testing.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/jobpulse/ingestor/internal/ingest"
)

// PostingStore implements ingest.PostingStore with maps and a counter.
type PostingStore struct {
	mu       sync.RWMutex
	byKey    map[string]string // (source, externalID) -> surrogate id
	postings map[string]ingest.JobPosting
	nextID   int
}

// NewPostingStore constructs a PostingStore.
func NewPostingStore() *PostingStore {
	return &PostingStore{
		byKey:    make(map[string]string),
		postings: make(map[string]ingest.JobPosting),
	}
}

func key(source, externalID string) string {
	return source + "\x00" + externalID
}

// FindByExternalID looks a posting up by its dedupe key.
func (s *PostingStore) FindByExternalID(_ context.Context, source, externalID string) (ingest.JobPosting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byKey[key(source, externalID)]
	if !ok {
		return ingest.JobPosting{}, ingest.ErrNotFound
	}
	return s.postings[id], nil
}

// Insert stores a new posting, enforcing (source, externalID) uniqueness.
func (s *PostingStore) Insert(_ context.Context, posting ingest.JobPosting) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(posting.Source, posting.ExternalID)
	if _, exists := s.byKey[k]; exists {
		return "", fmt.Errorf("posting %s/%s already exists", posting.Source, posting.ExternalID)
	}
	s.nextID++
	id := strconv.Itoa(s.nextID)
	posting.ID = id
	s.byKey[k] = id
	s.postings[id] = posting
	return id, nil
}

// Update overwrites an existing posting by surrogate id.
func (s *PostingStore) Update(_ context.Context, id string, posting ingest.JobPosting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.postings[id]; !ok {
		return ingest.ErrNotFound
	}
	posting.ID = id
	s.postings[id] = posting
	return nil
}

// All returns a copy of every stored posting, for tests and dev tooling.
func (s *PostingStore) All() []ingest.JobPosting {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ingest.JobPosting, 0, len(s.postings))
	for _, p := range s.postings {
		out = append(out, p)
	}
	return out
}
