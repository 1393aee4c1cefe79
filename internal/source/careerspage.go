package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/jobpulse/ingestor/internal/ingest"
)

// CareersPage scrapes a company careers page with a known, bespoke markup:
// each opening is an "li.opening" with a link, title, location and summary.
// This is not generic crawling; the page structure is part of the source
// contract and a markup change is a wholesale fetch failure.
type CareersPage struct {
	name      string
	company   string
	url       string
	userAgent string
	timeout   time.Duration
}

// NewCareersPage constructs a careers-page adapter.
func NewCareersPage(name, company, url, userAgent string, timeout time.Duration) *CareersPage {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &CareersPage{
		name:      name,
		company:   company,
		url:       url,
		userAgent: userAgent,
		timeout:   timeout,
	}
}

// Name identifies the source in outcomes and dedupe keys.
func (c *CareersPage) Name() string { return "careers:" + c.name }

// Fetch visits the page once and extracts one record per opening. The
// opening's href doubles as its external id.
func (c *CareersPage) Fetch(ctx context.Context) ([]ingest.RawRecord, error) {
	collector := colly.NewCollector(colly.Async(false))
	if c.userAgent != "" {
		collector.UserAgent = c.userAgent
	}
	collector.SetRequestTimeout(c.timeout)

	var records []ingest.RawRecord
	collector.OnHTML("li.opening", func(e *colly.HTMLElement) {
		href := e.ChildAttr("a", "href")
		if href == "" {
			return
		}
		records = append(records, ingest.RawRecord{
			ExternalID: href,
			Fields: map[string]string{
				"title":    selectionText(e.DOM, ".title"),
				"location": selectionText(e.DOM, ".location"),
				"summary":  selectionText(e.DOM, ".summary"),
				"url":      e.Request.AbsoluteURL(href),
			},
		})
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(c.url)
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("careers page fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("careers page fetch: %w", err)
		}
	}
	return records, nil
}

// NormalizeOne maps a scraped opening into normalizer input.
func (c *CareersPage) NormalizeOne(raw ingest.RawRecord) (ingest.RawPosting, error) {
	return ingest.RawPosting{
		ExternalID:  raw.ExternalID,
		Title:       raw.Fields["title"],
		Company:     c.company,
		Location:    raw.Fields["location"],
		Description: raw.Fields["summary"],
		URL:         raw.Fields["url"],
	}, nil
}

func selectionText(dom *goquery.Selection, selector string) string {
	return strings.TrimSpace(dom.Find(selector).First().Text())
}
