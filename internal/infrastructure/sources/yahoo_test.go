package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"SentimentReporter/internal/domain"
)

var yahooAsOf = time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)

// yahooServer serves the news listing and article pages. newsJSON receives
// the server's own base URL so article links can point back at it.
func yahooServer(t *testing.T, wantSymbol string, newsJSON func(baseURL string) string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v2/finance/news", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != wantSymbol {
			t.Errorf("unexpected symbol query: %q, want %q", got, wantSymbol)
		}
		fmt.Fprint(w, newsJSON("http://"+r.Host))
	})
	mux.HandleFunc("/article/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>Story body.</p></body></html>`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func yahooItem(contentType, pubDate, title, link string) string {
	return fmt.Sprintf(`{"content": {
		"contentType": %q,
		"pubDate": %q,
		"title": %q,
		"provider": {"displayName": "Newswire"},
		"canonicalUrl": {"url": %q}
	}}`, contentType, pubDate, title, link)
}

func TestYahooFetchRecent(t *testing.T) {
	t.Parallel()

	stock := domain.Asset{Type: domain.AssetStock, Symbol: "NVDA", Exchange: domain.ExchangeNasdaq, Alias: "Nvidia"}

	newsJSON := func(baseURL string) string {
		articleURL := baseURL + "/article/1"
		return "[" +
			yahooItem("STORY", "2026-08-30T10:00:00Z", "fresh story", articleURL) + "," +
			yahooItem("VIDEO", "2026-08-30T10:00:00Z", "a video", articleURL) + "," +
			yahooItem("STORY", "2026-08-28T10:00:00Z", "stale story", articleURL) + "," +
			yahooItem("STORY", "yesterday-ish", "bad timestamp", articleURL) +
			"]"
	}
	server := yahooServer(t, "NVDA", newsJSON)

	src := NewYahooSource(server.Client(), 24*time.Hour)
	src.baseURL = server.URL

	docs, err := src.FetchRecent(context.Background(), stock, yahooAsOf)
	if err != nil {
		t.Fatalf("FetchRecent error: %v", err)
	}

	if len(docs) != 1 {
		t.Fatalf("expected only the fresh STORY, got %d documents", len(docs))
	}
	doc := docs[0]
	if doc.Title != "fresh story" || doc.Source != "Newswire" {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if doc.Content != "Story body." {
		t.Fatalf("article body not extracted: %q", doc.Content)
	}
	if !doc.PublishedAt.Equal(time.Date(2026, time.August, 30, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected timestamp: %v", doc.PublishedAt)
	}
}

func TestYahooCryptoSymbolMapping(t *testing.T) {
	t.Parallel()

	crypto := domain.Asset{Type: domain.AssetCrypto, Symbol: "BTCUSDT", Exchange: domain.ExchangeBinance, Alias: "Bitcoin"}
	server := yahooServer(t, "BTC-USD", func(string) string { return "[]" })

	src := NewYahooSource(server.Client(), 24*time.Hour)
	src.baseURL = server.URL

	if _, err := src.FetchRecent(context.Background(), crypto, yahooAsOf); err != nil {
		t.Fatalf("FetchRecent error: %v", err)
	}
}

func TestYahooTicker(t *testing.T) {
	t.Parallel()

	cases := []struct {
		asset domain.Asset
		want  string
	}{
		{domain.Asset{Type: domain.AssetCrypto, Symbol: "BTCUSDT"}, "BTC-USD"},
		{domain.Asset{Type: domain.AssetCrypto, Symbol: "ETHUSDT"}, "ETH-USD"},
		{domain.Asset{Type: domain.AssetStock, Symbol: "NVDA"}, "NVDA"},
	}
	for _, tc := range cases {
		if got := yahooTicker(tc.asset); got != tc.want {
			t.Fatalf("yahooTicker(%s) = %q, want %q", tc.asset.Symbol, got, tc.want)
		}
	}
}

func TestYahooSurfacesListingFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	src := NewYahooSource(server.Client(), 24*time.Hour)
	src.baseURL = server.URL

	stock := domain.Asset{Type: domain.AssetStock, Symbol: "NVDA", Exchange: domain.ExchangeNasdaq}
	if _, err := src.FetchRecent(context.Background(), stock, yahooAsOf); err == nil {
		t.Fatal("expected error for failing listing")
	}
}
