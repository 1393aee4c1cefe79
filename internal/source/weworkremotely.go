package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/jobpulse/ingestor/internal/ingest"
)

const weWorkRemotelyFeedURL = "https://weworkremotely.com/remote-jobs.rss"

// WeWorkRemotely fetches the We Work Remotely RSS feed. Item titles carry
// "Company: Position"; the GUID is the stable external id.
type WeWorkRemotely struct {
	feedURL string
	parser  *gofeed.Parser
}

// NewWeWorkRemotely constructs the RSS adapter.
func NewWeWorkRemotely(timeout time.Duration) *WeWorkRemotely {
	parser := gofeed.NewParser()
	parser.Client = newHTTPClient(timeout)
	return &WeWorkRemotely{
		feedURL: weWorkRemotelyFeedURL,
		parser:  parser,
	}
}

// Name identifies the source in outcomes and dedupe keys.
func (w *WeWorkRemotely) Name() string { return "weworkremotely" }

// Fetch parses the feed; items without a link or GUID are skipped as
// malformed entries at fetch time since no stable identity exists for them.
func (w *WeWorkRemotely) Fetch(ctx context.Context) ([]ingest.RawRecord, error) {
	feed, err := w.parser.ParseURLWithContext(w.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("weworkremotely fetch: %w", err)
	}

	records := make([]ingest.RawRecord, 0, len(feed.Items))
	for _, item := range feed.Items {
		externalID := item.GUID
		if externalID == "" {
			externalID = item.Link
		}
		if externalID == "" {
			continue
		}
		region := ""
		if len(item.Categories) > 0 {
			region = item.Categories[0]
		}
		records = append(records, ingest.RawRecord{
			ExternalID: externalID,
			Fields: map[string]string{
				"title":       item.Title,
				"link":        item.Link,
				"description": item.Description,
				"region":      region,
			},
		})
	}
	return records, nil
}

// NormalizeOne splits the "Company: Position" title convention and fills
// normalizer input. A title without the separator leaves the company empty
// and fails validation downstream as one record failure.
func (w *WeWorkRemotely) NormalizeOne(raw ingest.RawRecord) (ingest.RawPosting, error) {
	company, title := splitFeedTitle(raw.Fields["title"])
	location := raw.Fields["region"]
	if location == "" {
		location = "remote"
	}
	return ingest.RawPosting{
		ExternalID:  raw.ExternalID,
		Title:       title,
		Company:     company,
		Location:    location,
		Description: raw.Fields["description"],
		URL:         raw.Fields["link"],
	}, nil
}

func splitFeedTitle(full string) (company, title string) {
	parts := strings.SplitN(full, ":", 2)
	if len(parts) != 2 {
		return "", strings.TrimSpace(full)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}
