package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html><body>
<ul>
  <li class="opening">
    <a href="/jobs/backend-engineer">Details</a>
    <span class="title">Backend Engineer</span>
    <span class="location">Remote</span>
    <p class="summary">Build services.</p>
  </li>
  <li class="opening">
    <a href="/jobs/designer">Details</a>
    <span class="title">Designer</span>
    <span class="location">Berlin</span>
    <p class="summary">Design things.</p>
  </li>
  <li class="opening">
    <span class="title">No Link, Skipped</span>
  </li>
</ul>
</body></html>`

func TestCareersPageFetch(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePage))
	}))
	t.Cleanup(ts.Close)

	c := NewCareersPage("acme", "Acme", ts.URL, "test-agent", time.Second)

	records, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "/jobs/backend-engineer", records[0].ExternalID)
	require.Equal(t, "Backend Engineer", records[0].Fields["title"])
	require.Equal(t, "Remote", records[0].Fields["location"])
	require.Equal(t, ts.URL+"/jobs/backend-engineer", records[0].Fields["url"])
}

func TestCareersPageFetchServerError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	t.Cleanup(ts.Close)

	c := NewCareersPage("acme", "Acme", ts.URL, "", time.Second)
	_, err := c.Fetch(context.Background())
	require.Error(t, err)
}

func TestCareersPageNormalizeOne(t *testing.T) {
	t.Parallel()

	c := NewCareersPage("acme", "Acme", "https://acme.example/careers", "", time.Second)
	in, err := c.NormalizeOne(record(t, "/jobs/backend-engineer", map[string]string{
		"title":    "Backend Engineer",
		"location": "Remote",
		"summary":  "Build services.",
		"url":      "https://acme.example/jobs/backend-engineer",
	}))
	require.NoError(t, err)
	require.Equal(t, "Acme", in.Company)
	require.Equal(t, "Backend Engineer", in.Title)
	require.Equal(t, "https://acme.example/jobs/backend-engineer", in.URL)
}

func TestCareersPageName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "careers:acme", NewCareersPage("acme", "Acme", "", "", 0).Name())
}
