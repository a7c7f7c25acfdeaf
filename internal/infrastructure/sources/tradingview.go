package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"SentimentReporter/internal/domain"
	"SentimentReporter/internal/ports"
)

const defaultTradingViewBaseURL = "https://news-headlines.tradingview.com"

// TradingViewSource pulls headlines and story bodies from the TradingView
// news API. The freshness window is applied to headline timestamps before
// story bodies are downloaded; headlines arrive newest-first, so iteration
// stops at the first stale entry.
type TradingViewSource struct {
	client  *http.Client
	baseURL string
	window  time.Duration
}

var _ ports.NewsSource = (*TradingViewSource)(nil)

// NewTradingViewSource wires an HTTP client; a nil client gets a default with
// a 20s timeout.
func NewTradingViewSource(client *http.Client, window time.Duration) *TradingViewSource {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &TradingViewSource{
		client:  client,
		baseURL: defaultTradingViewBaseURL,
		window:  window,
	}
}

// Name identifies the adapter in fan-in order.
func (s *TradingViewSource) Name() string {
	return "tradingview"
}

type tvHeadline struct {
	Title     string `json:"title"`
	StoryPath string `json:"storyPath"`
	Link      string `json:"link"`
	Provider  string `json:"provider"`
	Published int64  `json:"published"`
}

type tvStory struct {
	Body []tvParagraph `json:"body"`
}

type tvParagraph struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// FetchRecent lists the latest headlines for the symbol and downloads each
// story body. Per-item failures are skipped.
func (s *TradingViewSource) FetchRecent(ctx context.Context, asset domain.Asset, asOf time.Time) ([]domain.Document, error) {
	headlines, err := s.fetchHeadlines(ctx, asset)
	if err != nil {
		return nil, err
	}

	cutoff := asOf.Add(-s.window)
	var docs []domain.Document

	for _, headline := range headlines {
		publishedAt := time.Unix(headline.Published, 0)
		if publishedAt.Before(cutoff) {
			break
		}

		body, err := s.fetchStoryBody(ctx, headline.StoryPath)
		if err != nil || body == "" {
			continue
		}

		docs = append(docs, domain.Document{
			Content:     body,
			Title:       headline.Title,
			Source:      headline.Provider,
			Link:        headline.Link,
			PublishedAt: publishedAt,
		})
	}

	return docs, nil
}

func (s *TradingViewSource) fetchHeadlines(ctx context.Context, asset domain.Asset) ([]tvHeadline, error) {
	query := url.Values{}
	query.Set("client", "web")
	query.Set("lang", "en")
	query.Set("symbol", fmt.Sprintf("%s:%s", asset.Exchange, asset.Symbol))
	query.Set("sort", "latest")

	endpoint := fmt.Sprintf("%s/v2/headlines?%s", s.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build headlines request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch headlines: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tradingview returned %s", resp.Status)
	}

	var headlines []tvHeadline
	if err := json.NewDecoder(resp.Body).Decode(&headlines); err != nil {
		return nil, fmt.Errorf("decode headlines: %w", err)
	}
	return headlines, nil
}

func (s *TradingViewSource) fetchStoryBody(ctx context.Context, storyPath string) (string, error) {
	endpoint := fmt.Sprintf("%s/v2/story?id=%s", s.baseURL, url.QueryEscape(storyPath))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build story request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch story: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tradingview story returned %s", resp.Status)
	}

	var story tvStory
	if err := json.NewDecoder(resp.Body).Decode(&story); err != nil {
		return "", fmt.Errorf("decode story: %w", err)
	}

	var parts []string
	for _, paragraph := range story.Body {
		if paragraph.Type == "text" && paragraph.Content != "" {
			parts = append(parts, paragraph.Content)
		}
	}
	return strings.Join(parts, "\n"), nil
}
