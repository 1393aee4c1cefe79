package source

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jobpulse/ingestor/internal/ingest"
)

const remoteOKBaseURL = "https://remoteok.com/api"

// RemoteOK fetches the RemoteOK job board feed. The feed is a single JSON
// array whose first element is a legal notice, not a job.
type RemoteOK struct {
	baseURL string
	client  httpClient
}

// NewRemoteOK constructs a RemoteOK adapter.
func NewRemoteOK(timeout time.Duration) *RemoteOK {
	return &RemoteOK{
		baseURL: remoteOKBaseURL,
		client:  newHTTPClient(timeout),
	}
}

type remoteOKEntry struct {
	ID          string  `json:"id"`
	Position    string  `json:"position"`
	Company     string  `json:"company"`
	Location    string  `json:"location"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	SalaryMin   float64 `json:"salary_min"`
	SalaryMax   float64 `json:"salary_max"`
}

// Name identifies the source in outcomes and dedupe keys.
func (r *RemoteOK) Name() string { return "remoteok" }

// Fetch retrieves the whole feed in one request and drops the leading
// legal-notice element.
func (r *RemoteOK) Fetch(ctx context.Context) ([]ingest.RawRecord, error) {
	var entries []remoteOKEntry
	if err := getJSON(ctx, r.client, r.baseURL, nil, &entries); err != nil {
		return nil, fmt.Errorf("remoteok fetch: %w", err)
	}

	records := make([]ingest.RawRecord, 0, len(entries))
	for _, e := range entries {
		if e.ID == "" || e.Position == "" && e.Company == "" {
			// Legal-notice element and other non-job entries.
			continue
		}
		location := e.Location
		if location == "" {
			location = "remote"
		}
		records = append(records, ingest.RawRecord{
			ExternalID: e.ID,
			Fields: map[string]string{
				"position":    e.Position,
				"company":     e.Company,
				"location":    location,
				"description": e.Description,
				"url":         e.URL,
				"salaryMin":   strconv.FormatFloat(e.SalaryMin, 'f', -1, 64),
				"salaryMax":   strconv.FormatFloat(e.SalaryMax, 'f', -1, 64),
			},
		})
	}
	return records, nil
}

// NormalizeOne maps a RemoteOK record into normalizer input.
func (r *RemoteOK) NormalizeOne(raw ingest.RawRecord) (ingest.RawPosting, error) {
	comp := ingest.Compensation{Currency: "USD", Period: "yearly"}
	if v, err := parseFloat(raw.Fields["salaryMin"]); err == nil {
		comp.Min = v
	}
	if v, err := parseFloat(raw.Fields["salaryMax"]); err == nil {
		comp.Max = v
	}
	if comp.Min == 0 && comp.Max == 0 {
		comp = ingest.Compensation{}
	}
	return ingest.RawPosting{
		ExternalID:   raw.ExternalID,
		Title:        raw.Fields["position"],
		Company:      raw.Fields["company"],
		Location:     raw.Fields["location"],
		Description:  raw.Fields["description"],
		URL:          raw.Fields["url"],
		Compensation: comp,
	}, nil
}
