package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jobpulse/ingestor/internal/ingest"
)

func record(t *testing.T, externalID string, fields map[string]string) ingest.RawRecord {
	t.Helper()
	return ingest.RawRecord{ExternalID: externalID, Fields: fields}
}

func TestGetJSONDecodesBody(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"name":"ok"}`))
	}))
	t.Cleanup(ts.Close)

	var out struct {
		Name string `json:"name"`
	}
	err := getJSON(context.Background(), ts.Client(), ts.URL, map[string]string{"Authorization": "Bearer tok"}, &out)
	require.NoError(t, err)
	require.Equal(t, "ok", out.Name)
}

func TestGetJSONNon200(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	t.Cleanup(ts.Close)

	var out map[string]any
	err := getJSON(context.Background(), ts.Client(), ts.URL, nil, &out)
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
}

func TestGetJSONMalformedBody(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"broken`))
	}))
	t.Cleanup(ts.Close)

	var out map[string]any
	err := getJSON(context.Background(), ts.Client(), ts.URL, nil, &out)
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode")
}

func TestParseFloat(t *testing.T) {
	t.Parallel()

	v, err := parseFloat("90000.5")
	require.NoError(t, err)
	require.Equal(t, 90000.5, v)

	_, err = parseFloat("")
	require.Error(t, err)

	_, err = parseFloat("lots")
	require.Error(t, err)
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	require.Equal(t, "abc", truncate("abc", 5))
	require.Equal(t, "ab...", truncate("abcdef", 2))
}
