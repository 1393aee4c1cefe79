package source

import (
	"context"
	"fmt"
	"time"

	"github.com/jobpulse/ingestor/internal/ingest"
)

const leverBaseURL = "https://api.lever.co/v0/postings"

// Lever fetches postings from the public Lever postings API for one site.
type Lever struct {
	site    string
	company string
	baseURL string
	client  httpClient
}

// NewLever constructs a Lever adapter for the given site handle.
func NewLever(site, company string, timeout time.Duration) *Lever {
	return &Lever{
		site:    site,
		company: company,
		baseURL: leverBaseURL,
		client:  newHTTPClient(timeout),
	}
}

type leverPosting struct {
	ID               string `json:"id"`
	Text             string `json:"text"`
	DescriptionPlain string `json:"descriptionPlain"`
	HostedURL        string `json:"hostedUrl"`
	Categories       struct {
		Location string `json:"location"`
	} `json:"categories"`
	SalaryRange *struct {
		Min      float64 `json:"min"`
		Max      float64 `json:"max"`
		Currency string  `json:"currency"`
		Interval string  `json:"interval"`
	} `json:"salaryRange"`
}

// Name identifies the source in outcomes and dedupe keys.
func (l *Lever) Name() string { return "lever:" + l.site }

// Fetch retrieves all published postings; Lever serves them unpaginated in
// JSON mode.
func (l *Lever) Fetch(ctx context.Context) ([]ingest.RawRecord, error) {
	url := fmt.Sprintf("%s/%s?mode=json", l.baseURL, l.site)
	var postings []leverPosting
	if err := getJSON(ctx, l.client, url, nil, &postings); err != nil {
		return nil, fmt.Errorf("lever fetch: %w", err)
	}

	records := make([]ingest.RawRecord, 0, len(postings))
	for _, p := range postings {
		fields := map[string]string{
			"text":        p.Text,
			"description": p.DescriptionPlain,
			"location":    p.Categories.Location,
			"hostedUrl":   p.HostedURL,
		}
		if p.SalaryRange != nil {
			fields["salaryMin"] = fmt.Sprintf("%g", p.SalaryRange.Min)
			fields["salaryMax"] = fmt.Sprintf("%g", p.SalaryRange.Max)
			fields["salaryCurrency"] = p.SalaryRange.Currency
			fields["salaryInterval"] = p.SalaryRange.Interval
		}
		records = append(records, ingest.RawRecord{ExternalID: p.ID, Fields: fields})
	}
	return records, nil
}

// NormalizeOne maps a Lever record into normalizer input.
func (l *Lever) NormalizeOne(raw ingest.RawRecord) (ingest.RawPosting, error) {
	return ingest.RawPosting{
		ExternalID:   raw.ExternalID,
		Title:        raw.Fields["text"],
		Company:      l.company,
		Location:     raw.Fields["location"],
		Description:  raw.Fields["description"],
		URL:          raw.Fields["hostedUrl"],
		Compensation: parseCompensation(raw.Fields),
	}, nil
}

// parseCompensation rebuilds a structured compensation from adapter fields.
// Missing or malformed numbers leave the corresponding field zero.
func parseCompensation(fields map[string]string) ingest.Compensation {
	comp := ingest.Compensation{
		Currency: fields["salaryCurrency"],
		Period:   fields["salaryInterval"],
		Raw:      fields["salaryRaw"],
	}
	if v, err := parseFloat(fields["salaryMin"]); err == nil {
		comp.Min = v
	}
	if v, err := parseFloat(fields["salaryMax"]); err == nil {
		comp.Max = v
	}
	return comp
}
