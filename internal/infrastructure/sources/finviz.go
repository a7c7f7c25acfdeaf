package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"SentimentReporter/internal/domain"
	"SentimentReporter/internal/ports"
)

const defaultFinvizBaseURL = "https://finviz.com"

// FinvizSource scrapes the news table on a Finviz quote page. It covers
// equities only; crypto assets yield zero documents. The freshness window is
// applied after each row's timestamp is normalized to its zone, before the
// article body is downloaded.
type FinvizSource struct {
	client  *http.Client
	baseURL string
	window  time.Duration
	zone    *time.Location
}

var _ ports.NewsSource = (*FinvizSource)(nil)

// NewFinvizSource wires an HTTP client; a nil client gets a default with a
// 20s timeout. Finviz timestamps are US/Eastern.
func NewFinvizSource(client *http.Client, window time.Duration) *FinvizSource {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	zone, err := time.LoadLocation("America/New_York")
	if err != nil {
		zone = time.UTC
	}
	return &FinvizSource{
		client:  client,
		baseURL: defaultFinvizBaseURL,
		window:  window,
		zone:    zone,
	}
}

// Name identifies the adapter in fan-in order.
func (s *FinvizSource) Name() string {
	return "finviz"
}

// FetchRecent scrapes the quote page news table and downloads each fresh
// article's body. Per-row failures are skipped.
func (s *FinvizSource) FetchRecent(ctx context.Context, asset domain.Asset, asOf time.Time) ([]domain.Document, error) {
	if asset.Type != domain.AssetStock {
		return nil, nil
	}

	pageURL := fmt.Sprintf("%s/quote.ashx?t=%s", s.baseURL, asset.Symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch quote page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("finviz returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse quote page: %w", err)
	}

	cutoff := asOf.Add(-s.window)
	var (
		docs    []domain.Document
		lastDay time.Time
	)

	doc.Find("#news-table tr").Each(func(i int, row *goquery.Selection) {
		publishedAt, ok := s.parseRowTime(row.Find("td").First().Text(), &lastDay)
		if !ok || publishedAt.Before(cutoff) {
			return
		}

		anchor := row.Find("a").First()
		href, exists := anchor.Attr("href")
		if !exists || href == "" {
			return
		}
		// Finviz-hosted stories use relative links.
		if strings.HasPrefix(href, "/news") {
			href = s.baseURL + href
		}

		body, err := fetchArticleText(ctx, s.client, href)
		if err != nil || body == "" {
			return
		}

		docs = append(docs, domain.Document{
			Content:     body,
			Title:       strings.TrimSpace(anchor.Text()),
			Source:      strings.TrimSpace(row.Find("span").Last().Text()),
			Link:        href,
			PublishedAt: publishedAt,
		})
	})

	return docs, nil
}

// parseRowTime handles the two Finviz timestamp shapes: "Jan-02-06 03:04PM"
// on the first row of a day and bare "03:04PM" on the rest, which inherit the
// preceding row's date.
func (s *FinvizSource) parseRowTime(raw string, lastDay *time.Time) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	if parsed, err := time.ParseInLocation("Jan-02-06 03:04PM", raw, s.zone); err == nil {
		*lastDay = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, s.zone)
		return parsed, true
	}

	if lastDay.IsZero() {
		return time.Time{}, false
	}
	clock, err := time.ParseInLocation("03:04PM", raw, s.zone)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(lastDay.Year(), lastDay.Month(), lastDay.Day(),
		clock.Hour(), clock.Minute(), 0, 0, s.zone), true
}
