package source

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/jobpulse/ingestor/internal/ingest"
)

const (
	adzunaBaseURL  = "https://api.adzuna.com/v1/api/jobs"
	adzunaPageSize = 50
	adzunaMaxPages = 3
)

// Adzuna fetches offers from the Adzuna public API for one country and
// search term. Requires an application id/key pair.
type Adzuna struct {
	appID   string
	appKey  string
	country string
	what    string
	baseURL string
	client  httpClient
}

// NewAdzuna constructs an Adzuna adapter.
func NewAdzuna(appID, appKey, country, what string, timeout time.Duration) *Adzuna {
	return &Adzuna{
		appID:   appID,
		appKey:  appKey,
		country: country,
		what:    what,
		baseURL: adzunaBaseURL,
		client:  newHTTPClient(timeout),
	}
}

type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
}

type adzunaResult struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	SalaryMin   float64 `json:"salary_min"`
	SalaryMax   float64 `json:"salary_max"`
	RedirectURL string  `json:"redirect_url"`
	Company     struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
}

// Name identifies the source in outcomes and dedupe keys.
func (a *Adzuna) Name() string { return "adzuna:" + a.country }

// Fetch pages through search results until a short page or the page cap.
// Missing credentials are an adapter-level error; the runner records one
// fatal failure for this source and moves on.
func (a *Adzuna) Fetch(ctx context.Context) ([]ingest.RawRecord, error) {
	if a.appID == "" || a.appKey == "" {
		return nil, fmt.Errorf("adzuna fetch: app id/key not configured")
	}

	var records []ingest.RawRecord
	for page := 1; page <= adzunaMaxPages; page++ {
		batch, err := a.fetchPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("adzuna fetch page %d: %w", page, err)
		}
		records = append(records, batch...)
		if len(batch) < adzunaPageSize {
			break
		}
	}
	return records, nil
}

func (a *Adzuna) fetchPage(ctx context.Context, page int) ([]ingest.RawRecord, error) {
	params := url.Values{}
	params.Set("app_id", a.appID)
	params.Set("app_key", a.appKey)
	params.Set("results_per_page", strconv.Itoa(adzunaPageSize))
	params.Set("what", a.what)
	params.Set("sort_by", "date")
	endpoint := fmt.Sprintf("%s/%s/search/%d?%s", a.baseURL, a.country, page, params.Encode())

	var resp adzunaResponse
	if err := getJSON(ctx, a.client, endpoint, nil, &resp); err != nil {
		return nil, err
	}

	records := make([]ingest.RawRecord, 0, len(resp.Results))
	for _, r := range resp.Results {
		records = append(records, ingest.RawRecord{
			ExternalID: r.ID,
			Fields: map[string]string{
				"title":       r.Title,
				"company":     r.Company.DisplayName,
				"location":    r.Location.DisplayName,
				"description": r.Description,
				"redirectUrl": r.RedirectURL,
				"salaryMin":   strconv.FormatFloat(r.SalaryMin, 'f', -1, 64),
				"salaryMax":   strconv.FormatFloat(r.SalaryMax, 'f', -1, 64),
			},
		})
	}
	return records, nil
}

// NormalizeOne maps an Adzuna record into normalizer input.
func (a *Adzuna) NormalizeOne(raw ingest.RawRecord) (ingest.RawPosting, error) {
	comp := ingest.Compensation{}
	if v, err := parseFloat(raw.Fields["salaryMin"]); err == nil {
		comp.Min = v
	}
	if v, err := parseFloat(raw.Fields["salaryMax"]); err == nil {
		comp.Max = v
	}
	return ingest.RawPosting{
		ExternalID:   raw.ExternalID,
		Title:        raw.Fields["title"],
		Company:      raw.Fields["company"],
		Location:     raw.Fields["location"],
		Description:  raw.Fields["description"],
		URL:          raw.Fields["redirectUrl"],
		Compensation: comp,
	}, nil
}
