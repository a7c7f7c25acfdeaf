package sources

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"SentimentReporter/internal/domain"
	"SentimentReporter/internal/ports"
)

// RSSSource adapts one RSS/Atom feed. Feeds are not symbol-scoped; operators
// register feeds whose coverage matches the configured assets. The freshness
// window is applied after feed normalization, on parsed entry timestamps.
type RSSSource struct {
	name   string
	url    string
	client *http.Client
	parser *gofeed.Parser
	window time.Duration
}

var _ ports.NewsSource = (*RSSSource)(nil)

// NewRSSSource builds an adapter for one feed URL.
func NewRSSSource(name, feedURL string, client *http.Client, window time.Duration) *RSSSource {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &RSSSource{
		name:   name,
		url:    feedURL,
		client: client,
		parser: gofeed.NewParser(),
		window: window,
	}
}

// Name identifies the adapter in fan-in order.
func (s *RSSSource) Name() string {
	return s.name
}

// FetchRecent downloads and parses the feed, keeping entries inside the
// window. Entries without any usable timestamp or body are dropped.
func (s *RSSSource) FetchRecent(ctx context.Context, asset domain.Asset, asOf time.Time) ([]domain.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s returned %s", s.url, resp.Status)
	}

	feed, err := s.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", s.url, err)
	}

	cutoff := asOf.Add(-s.window)
	var docs []domain.Document

	for _, entry := range feed.Items {
		var publishedAt time.Time
		switch {
		case entry.PublishedParsed != nil:
			publishedAt = *entry.PublishedParsed
		case entry.UpdatedParsed != nil:
			publishedAt = *entry.UpdatedParsed
		default:
			continue
		}
		if publishedAt.Before(cutoff) {
			continue
		}

		content := entry.Content
		if content == "" {
			content = entry.Description
		}
		if content == "" || entry.Link == "" {
			continue
		}

		docs = append(docs, domain.Document{
			Content:     content,
			Title:       entry.Title,
			Source:      s.name,
			Link:        entry.Link,
			PublishedAt: publishedAt,
		})
	}

	return docs, nil
}
