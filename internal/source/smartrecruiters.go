package source

import (
	"context"
	"fmt"
	"time"

	"github.com/jobpulse/ingestor/internal/ingest"
)

const (
	smartRecruitersBaseURL  = "https://api.smartrecruiters.com/v1/companies"
	smartRecruitersPageSize = 100
	smartRecruitersMaxPages = 5
)

// SmartRecruiters fetches published postings from the SmartRecruiters
// posting API for one company identifier. Pagination is offset-based.
type SmartRecruiters struct {
	companyID string
	baseURL   string
	client    httpClient
}

// NewSmartRecruiters constructs a SmartRecruiters adapter.
func NewSmartRecruiters(companyID string, timeout time.Duration) *SmartRecruiters {
	return &SmartRecruiters{
		companyID: companyID,
		baseURL:   smartRecruitersBaseURL,
		client:    newHTTPClient(timeout),
	}
}

type smartRecruitersResponse struct {
	TotalFound int                      `json:"totalFound"`
	Content    []smartRecruitersPosting `json:"content"`
}

type smartRecruitersPosting struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Company  struct {
		Name string `json:"name"`
	} `json:"company"`
	Location struct {
		City    string `json:"city"`
		Country string `json:"country"`
		Remote  bool   `json:"remote"`
	} `json:"location"`
	JobAd struct {
		Sections struct {
			JobDescription struct {
				Text string `json:"text"`
			} `json:"jobDescription"`
		} `json:"sections"`
	} `json:"jobAd"`
}

// Name identifies the source in outcomes and dedupe keys.
func (s *SmartRecruiters) Name() string { return "smartrecruiters:" + s.companyID }

// Fetch pages through the posting list until totalFound is covered or the
// page cap hits.
func (s *SmartRecruiters) Fetch(ctx context.Context) ([]ingest.RawRecord, error) {
	var records []ingest.RawRecord
	for page := 0; page < smartRecruitersMaxPages; page++ {
		offset := page * smartRecruitersPageSize
		url := fmt.Sprintf("%s/%s/postings?limit=%d&offset=%d",
			s.baseURL, s.companyID, smartRecruitersPageSize, offset)
		var resp smartRecruitersResponse
		if err := getJSON(ctx, s.client, url, nil, &resp); err != nil {
			return nil, fmt.Errorf("smartrecruiters fetch: %w", err)
		}
		for _, p := range resp.Content {
			location := p.Location.City
			if p.Location.Remote {
				location = "remote"
			} else if location != "" && p.Location.Country != "" {
				location = location + ", " + p.Location.Country
			}
			records = append(records, ingest.RawRecord{
				ExternalID: p.ID,
				Fields: map[string]string{
					"name":        p.Name,
					"company":     p.Company.Name,
					"location":    location,
					"description": p.JobAd.Sections.JobDescription.Text,
					"url":         fmt.Sprintf("https://jobs.smartrecruiters.com/%s/%s", s.companyID, p.ID),
				},
			})
		}
		if offset+len(resp.Content) >= resp.TotalFound || len(resp.Content) == 0 {
			break
		}
	}
	return records, nil
}

// NormalizeOne maps a SmartRecruiters record into normalizer input.
func (s *SmartRecruiters) NormalizeOne(raw ingest.RawRecord) (ingest.RawPosting, error) {
	return ingest.RawPosting{
		ExternalID:  raw.ExternalID,
		Title:       raw.Fields["name"],
		Company:     raw.Fields["company"],
		Location:    raw.Fields["location"],
		Description: raw.Fields["description"],
		URL:         raw.Fields["url"],
	}, nil
}
