package source

import (
	"context"
	"fmt"
	"time"

	"github.com/jobpulse/ingestor/internal/ingest"
)

const workableMaxPages = 10

// Workable fetches published jobs from the Workable SPI v3 for one account
// subdomain. The API requires a bearer token and paginates via paging.next.
type Workable struct {
	subdomain string
	company   string
	token     string
	baseURL   string
	client    httpClient
}

// NewWorkable constructs a Workable adapter.
func NewWorkable(subdomain, company, token string, timeout time.Duration) *Workable {
	return &Workable{
		subdomain: subdomain,
		company:   company,
		token:     token,
		baseURL:   fmt.Sprintf("https://%s.workable.com/spi/v3", subdomain),
		client:    newHTTPClient(timeout),
	}
}

type workableResponse struct {
	Jobs   []workableJob `json:"jobs"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

type workableJob struct {
	ID          string `json:"id"`
	Shortcode   string `json:"shortcode"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Location    struct {
		City    string `json:"city"`
		Country string `json:"country"`
	} `json:"location"`
	Remote bool `json:"telecommuting"`
}

// Name identifies the source in outcomes and dedupe keys.
func (w *Workable) Name() string { return "workable:" + w.subdomain }

// Fetch walks the paging.next chain until exhausted or the page cap hits.
func (w *Workable) Fetch(ctx context.Context) ([]ingest.RawRecord, error) {
	if w.token == "" {
		return nil, fmt.Errorf("workable fetch: access token not configured")
	}
	headers := map[string]string{"Authorization": "Bearer " + w.token}

	var records []ingest.RawRecord
	url := w.baseURL + "/jobs?state=published"
	for page := 0; url != "" && page < workableMaxPages; page++ {
		var resp workableResponse
		if err := getJSON(ctx, w.client, url, headers, &resp); err != nil {
			return nil, fmt.Errorf("workable fetch: %w", err)
		}
		for _, job := range resp.Jobs {
			location := job.Location.City
			if job.Remote {
				location = "remote"
			} else if location != "" && job.Location.Country != "" {
				location = location + ", " + job.Location.Country
			}
			records = append(records, ingest.RawRecord{
				ExternalID: job.Shortcode,
				Fields: map[string]string{
					"title":       job.Title,
					"description": job.Description,
					"location":    location,
					"url":         job.URL,
				},
			})
		}
		url = resp.Paging.Next
	}
	return records, nil
}

// NormalizeOne maps a Workable record into normalizer input.
func (w *Workable) NormalizeOne(raw ingest.RawRecord) (ingest.RawPosting, error) {
	return ingest.RawPosting{
		ExternalID:  raw.ExternalID,
		Title:       raw.Fields["title"],
		Company:     w.company,
		Location:    raw.Fields["location"],
		Description: raw.Fields["description"],
		URL:         raw.Fields["url"],
	}, nil
}
