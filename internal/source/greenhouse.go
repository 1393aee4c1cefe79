package source

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jobpulse/ingestor/internal/ingest"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// Greenhouse fetches postings from the Greenhouse Job Board API for one
// board token. The API returns every published posting in a single page.
type Greenhouse struct {
	board   string
	company string
	baseURL string
	client  httpClient
}

// NewGreenhouse constructs a Greenhouse adapter for the given board token.
func NewGreenhouse(board, company string, timeout time.Duration) *Greenhouse {
	return &Greenhouse{
		board:   board,
		company: company,
		baseURL: greenhouseBaseURL,
		client:  newHTTPClient(timeout),
	}
}

type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

type greenhouseJob struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	AbsoluteURL string `json:"absolute_url"`
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
}

// Name identifies the source in outcomes and dedupe keys.
func (g *Greenhouse) Name() string { return "greenhouse:" + g.board }

// Fetch retrieves the full board in one request.
func (g *Greenhouse) Fetch(ctx context.Context) ([]ingest.RawRecord, error) {
	url := fmt.Sprintf("%s/%s/jobs?content=true", g.baseURL, g.board)
	var resp greenhouseResponse
	if err := getJSON(ctx, g.client, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("greenhouse fetch: %w", err)
	}

	records := make([]ingest.RawRecord, 0, len(resp.Jobs))
	for _, job := range resp.Jobs {
		records = append(records, ingest.RawRecord{
			ExternalID: strconv.FormatInt(job.ID, 10),
			Fields: map[string]string{
				"title":       job.Title,
				"content":     job.Content,
				"location":    job.Location.Name,
				"absoluteUrl": job.AbsoluteURL,
			},
		})
	}
	return records, nil
}

// NormalizeOne maps a Greenhouse record into normalizer input. The company
// comes from configuration; boards do not repeat it per posting.
func (g *Greenhouse) NormalizeOne(raw ingest.RawRecord) (ingest.RawPosting, error) {
	return ingest.RawPosting{
		ExternalID:  raw.ExternalID,
		Title:       raw.Fields["title"],
		Company:     g.company,
		Location:    raw.Fields["location"],
		Description: raw.Fields["content"],
		URL:         raw.Fields["absoluteUrl"],
	}, nil
}
