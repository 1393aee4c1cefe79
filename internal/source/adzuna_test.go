package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAdzunaFetchRequiresCredentials(t *testing.T) {
	t.Parallel()

	a := NewAdzuna("", "", "gb", "engineer", time.Second)
	_, err := a.Fetch(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "app id/key")
}

// A short page ends pagination early.
func TestAdzunaFetchStopsOnShortPage(t *testing.T) {
	t.Parallel()

	var pagesServed int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pagesServed++
		require.Equal(t, "id", r.URL.Query().Get("app_id"))
		require.Equal(t, "key", r.URL.Query().Get("app_key"))
		_, _ = w.Write([]byte(`{"results": [
			{
				"id": "az-1",
				"title": "Engineer",
				"description": "Build.",
				"salary_min": 50000,
				"salary_max": 70000,
				"redirect_url": "https://adzuna.example/az-1",
				"company": {"display_name": "Acme"},
				"location": {"display_name": "London"}
			}
		]}`))
	}))
	t.Cleanup(ts.Close)

	a := NewAdzuna("id", "key", "gb", "engineer", time.Second)
	a.baseURL = ts.URL

	records, err := a.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, pagesServed)
	require.Len(t, records, 1)
	require.Equal(t, "az-1", records[0].ExternalID)
	require.Equal(t, "Acme", records[0].Fields["company"])
}

func TestAdzunaNormalizeOne(t *testing.T) {
	t.Parallel()

	a := NewAdzuna("id", "key", "gb", "engineer", time.Second)
	in, err := a.NormalizeOne(record(t, "az-1", map[string]string{
		"title":       "Engineer",
		"company":     "Acme",
		"location":    "London",
		"description": "Build.",
		"redirectUrl": "https://adzuna.example/az-1",
		"salaryMin":   "50000",
		"salaryMax":   "70000",
	}))
	require.NoError(t, err)
	require.Equal(t, "Acme", in.Company)
	require.Equal(t, float64(50000), in.Compensation.Min)
	require.Equal(t, float64(70000), in.Compensation.Max)
}
