package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"SentimentReporter/internal/domain"
	"SentimentReporter/internal/ports"
)

const defaultYahooBaseURL = "https://query2.finance.yahoo.com"

// YahooSource pulls news metadata from the Yahoo Finance news API and
// downloads each article's body. The freshness window is applied to the
// normalized publication timestamp before the body download.
type YahooSource struct {
	client  *http.Client
	baseURL string
	window  time.Duration
}

var _ ports.NewsSource = (*YahooSource)(nil)

// NewYahooSource wires an HTTP client; a nil client gets a default with a
// 20s timeout.
func NewYahooSource(client *http.Client, window time.Duration) *YahooSource {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &YahooSource{
		client:  client,
		baseURL: defaultYahooBaseURL,
		window:  window,
	}
}

// Name identifies the adapter in fan-in order.
func (s *YahooSource) Name() string {
	return "yahoo-finance"
}

type yahooNewsItem struct {
	Content struct {
		ContentType string `json:"contentType"`
		PubDate     string `json:"pubDate"`
		Title       string `json:"title"`
		Provider    struct {
			DisplayName string `json:"displayName"`
		} `json:"provider"`
		CanonicalURL struct {
			URL string `json:"url"`
		} `json:"canonicalUrl"`
	} `json:"content"`
}

// FetchRecent lists recent stories for the asset's Yahoo ticker and downloads
// each fresh story's body. Per-item failures are skipped.
func (s *YahooSource) FetchRecent(ctx context.Context, asset domain.Asset, asOf time.Time) ([]domain.Document, error) {
	query := url.Values{}
	query.Set("symbol", yahooTicker(asset))
	query.Set("count", "30")

	endpoint := fmt.Sprintf("%s/v2/finance/news?%s", s.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch news list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo returned %s", resp.Status)
	}

	var items []yahooNewsItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode news list: %w", err)
	}

	cutoff := asOf.Add(-s.window)
	var docs []domain.Document

	for _, item := range items {
		if item.Content.ContentType != "STORY" {
			continue
		}
		publishedAt, err := time.Parse("2006-01-02T15:04:05Z", item.Content.PubDate)
		if err != nil {
			continue
		}
		if publishedAt.Before(cutoff) {
			continue
		}

		link := item.Content.CanonicalURL.URL
		body, err := fetchArticleText(ctx, s.client, link)
		if err != nil || body == "" {
			continue
		}

		docs = append(docs, domain.Document{
			Content:     body,
			Title:       item.Content.Title,
			Source:      item.Content.Provider.DisplayName,
			Link:        link,
			PublishedAt: publishedAt,
		})
	}

	return docs, nil
}

// yahooTicker maps the trading symbol onto Yahoo's naming: crypto pairs like
// BTCUSDT become BTC-USD, equities keep their symbol.
func yahooTicker(asset domain.Asset) string {
	if asset.Type == domain.AssetCrypto && len(asset.Symbol) > 4 {
		return asset.Symbol[:len(asset.Symbol)-4] + "-USD"
	}
	return asset.Symbol
}
