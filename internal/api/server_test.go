package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jobpulse/ingestor/internal/ingest"
	"github.com/jobpulse/ingestor/internal/orchestrator"
	"github.com/jobpulse/ingestor/internal/runlock"
	"github.com/jobpulse/ingestor/internal/trigger"
)

type stubSource struct {
	name string
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) Fetch(context.Context) ([]ingest.RawRecord, error) { return nil, nil }

func (s stubSource) NormalizeOne(ingest.RawRecord) (ingest.RawPosting, error) {
	return ingest.RawPosting{}, nil
}

type spyRunner struct {
	calls    atomic.Int64
	outcomes map[string]ingest.CrawlOutcome
}

func (r *spyRunner) Run(_ context.Context, src ingest.Source) ingest.CrawlOutcome {
	r.calls.Add(1)
	if outcome, ok := r.outcomes[src.Name()]; ok {
		return outcome
	}
	return ingest.CrawlOutcome{Source: src.Name()}
}

type stubClock struct{}

func (stubClock) Now() time.Time { return time.Unix(1700000000, 0).UTC() }

type stubIDGen struct{}

func (stubIDGen) NewID() (string, error) { return "run-test", nil }

type heldLock struct{}

func (heldLock) Acquire(context.Context, time.Duration) (bool, error) { return false, nil }

func (heldLock) Release(context.Context) error { return nil }

func newTestServer(t *testing.T, secret string, lock ingest.RunLock) (*Server, *spyRunner) {
	t.Helper()
	runner := &spyRunner{outcomes: map[string]ingest.CrawlOutcome{
		"alpha": {Source: "alpha", Total: 3, Succeeded: 2, Failed: 1, FailureReasons: []string{"missing title"}},
		"beta":  {Source: "beta", Total: 2, Succeeded: 2},
	}}
	orch := orchestrator.New(runner,
		[]ingest.Source{stubSource{name: "alpha"}, stubSource{name: "beta"}},
		2, stubIDGen{}, stubClock{}, nil)
	if lock == nil {
		lock = runlock.NopLock{}
	}
	trg := trigger.New(orch, lock, time.Minute, nil)
	return NewServer(trg, Config{Secret: secret}, nil), runner
}

func doRequest(t *testing.T, srv *Server, method, path, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, "", nil)
	rec := doRequest(t, srv, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

// A missing or wrong credential is rejected before any source runs.
func TestCrawlRejectsMissingCredential(t *testing.T) {
	t.Parallel()

	srv, runner := newTestServer(t, "hunter2", nil)

	rec := doRequest(t, srv, http.MethodGet, "/v1/crawl", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/v1/crawl", "wrong")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	require.Equal(t, int64(0), runner.calls.Load())
}

func TestCrawlRunsAllSources(t *testing.T) {
	t.Parallel()

	srv, runner := newTestServer(t, "hunter2", nil)
	rec := doRequest(t, srv, http.MethodGet, "/v1/crawl", "hunter2")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(2), runner.calls.Load())

	var resp struct {
		Success      bool                  `json:"success"`
		RunID        string                `json:"run_id"`
		Total        int                   `json:"total"`
		SuccessCount int                   `json:"success_count"`
		FailedCount  int                   `json:"failed_count"`
		Results      []ingest.CrawlOutcome `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "run-test", resp.RunID)
	require.Equal(t, 5, resp.Total)
	require.Equal(t, 4, resp.SuccessCount)
	require.Equal(t, 1, resp.FailedCount)
	require.Len(t, resp.Results, 2)
	require.Equal(t, "alpha", resp.Results[0].Source)
	require.Equal(t, "beta", resp.Results[1].Source)
}

func TestCrawlWithoutSecretIsOpen(t *testing.T) {
	t.Parallel()

	srv, runner := newTestServer(t, "", nil)
	rec := doRequest(t, srv, http.MethodGet, "/v1/crawl", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(2), runner.calls.Load())
}

func TestCrawlSingleSource(t *testing.T) {
	t.Parallel()

	srv, runner := newTestServer(t, "hunter2", nil)
	rec := doRequest(t, srv, http.MethodGet, "/v1/crawl/alpha", "hunter2")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(1), runner.calls.Load())

	var resp struct {
		Success     bool `json:"success"`
		Total       int  `json:"total"`
		FailedCount int  `json:"failed_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, 3, resp.Total)
	require.Equal(t, 1, resp.FailedCount)
}

func TestCrawlUnknownSource(t *testing.T) {
	t.Parallel()

	srv, runner := newTestServer(t, "hunter2", nil)
	rec := doRequest(t, srv, http.MethodGet, "/v1/crawl/nope", "hunter2")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, int64(0), runner.calls.Load())
}

func TestCrawlConflictWhenRunInProgress(t *testing.T) {
	t.Parallel()

	srv, runner := newTestServer(t, "hunter2", heldLock{})
	rec := doRequest(t, srv, http.MethodGet, "/v1/crawl", "hunter2")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, int64(0), runner.calls.Load())
}

func TestListSources(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, "hunter2", nil)
	rec := doRequest(t, srv, http.MethodGet, "/v1/sources", "hunter2")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Sources []string `json:"sources"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, []string{"alpha", "beta"}, resp.Sources)
}

func TestQuerySecretAccepted(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, "hunter2", nil)
	req := httptest.NewRequest(http.MethodGet, "/v1/sources?secret=hunter2", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
