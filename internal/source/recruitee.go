package source

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jobpulse/ingestor/internal/ingest"
)

// Recruitee fetches published offers from the public Recruitee careers API
// for one company handle. The endpoint serves all offers in a single page.
type Recruitee struct {
	handle  string
	company string
	baseURL string
	client  httpClient
}

// NewRecruitee constructs a Recruitee adapter.
func NewRecruitee(handle, company string, timeout time.Duration) *Recruitee {
	return &Recruitee{
		handle:  handle,
		company: company,
		baseURL: fmt.Sprintf("https://%s.recruitee.com/api", handle),
		client:  newHTTPClient(timeout),
	}
}

type recruiteeResponse struct {
	Offers []recruiteeOffer `json:"offers"`
}

type recruiteeOffer struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	Remote      bool   `json:"remote"`
	Description string `json:"description"`
	CareersURL  string `json:"careers_url"`
	Salary      struct {
		Min    string `json:"min"`
		Max    string `json:"max"`
		Type   string `json:"type"`
		Period string `json:"period"`
	} `json:"salary"`
}

// Name identifies the source in outcomes and dedupe keys.
func (r *Recruitee) Name() string { return "recruitee:" + r.handle }

// Fetch retrieves the full offer list in one request.
func (r *Recruitee) Fetch(ctx context.Context) ([]ingest.RawRecord, error) {
	url := r.baseURL + "/offers/"
	var resp recruiteeResponse
	if err := getJSON(ctx, r.client, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("recruitee fetch: %w", err)
	}

	records := make([]ingest.RawRecord, 0, len(resp.Offers))
	for _, offer := range resp.Offers {
		location := offer.Location
		if offer.Remote {
			location = "remote"
		}
		records = append(records, ingest.RawRecord{
			ExternalID: strconv.FormatInt(offer.ID, 10),
			Fields: map[string]string{
				"title":        offer.Title,
				"location":     location,
				"description":  offer.Description,
				"careersUrl":   offer.CareersURL,
				"salaryMin":    offer.Salary.Min,
				"salaryMax":    offer.Salary.Max,
				"salaryPeriod": offer.Salary.Period,
			},
		})
	}
	return records, nil
}

// NormalizeOne maps a Recruitee record into normalizer input.
func (r *Recruitee) NormalizeOne(raw ingest.RawRecord) (ingest.RawPosting, error) {
	comp := ingest.Compensation{Period: raw.Fields["salaryPeriod"]}
	if v, err := parseFloat(raw.Fields["salaryMin"]); err == nil {
		comp.Min = v
	}
	if v, err := parseFloat(raw.Fields["salaryMax"]); err == nil {
		comp.Max = v
	}
	return ingest.RawPosting{
		ExternalID:   raw.ExternalID,
		Title:        raw.Fields["title"],
		Company:      r.company,
		Location:     raw.Fields["location"],
		Description:  raw.Fields["description"],
		URL:          raw.Fields["careersUrl"],
		Compensation: comp,
	}, nil
}
