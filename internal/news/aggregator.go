package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"SentimentReporter/internal/domain"
	"SentimentReporter/internal/ports"
)

// ErrNoSources is returned when aggregation is attempted with zero adapters.
var ErrNoSources = errors.New("no news sources registered")

// ErrNoDocuments is returned when every source came back empty after
// filtering; the critique loop must never be fed an empty digest.
var ErrNoDocuments = errors.New("no documents survived aggregation")

// Aggregator fans out to registered news sources, deduplicates by link and
// serializes the surviving documents into a digest.
type Aggregator struct {
	sources       []ports.NewsSource
	links         ports.LinkRepository
	window        time.Duration
	sourceTimeout time.Duration
	maxParallel   int
	logger        *slog.Logger
}

// Options tunes aggregation behavior.
type Options struct {
	// Window is the freshness cutoff: documents older than asOf-Window are
	// dropped regardless of source.
	Window time.Duration
	// SourceTimeout bounds each adapter fetch so a hung source cannot stall
	// the whole aggregation.
	SourceTimeout time.Duration
	// MaxParallel bounds concurrent source fetches.
	MaxParallel int
	// Links, when non-nil, drops documents already reported in earlier runs.
	Links ports.LinkRepository
}

// NewAggregator builds an aggregator over the given sources. Source order is
// significant: it defines fan-in order and therefore dedup priority.
func NewAggregator(sources []ports.NewsSource, opts Options, logger *slog.Logger) *Aggregator {
	if opts.Window <= 0 {
		opts.Window = 24 * time.Hour
	}
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = 20 * time.Second
	}
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = 4
	}
	return &Aggregator{
		sources:       sources,
		links:         opts.Links,
		window:        opts.Window,
		sourceTimeout: opts.SourceTimeout,
		maxParallel:   opts.MaxParallel,
		logger:        logger,
	}
}

// Aggregate fetches from every source, drops stale and duplicate items, and
// returns the surviving documents with their serialized digest. A failing
// source contributes zero documents and is never surfaced as an error; only
// a total failure (no sources, nothing survived, cancellation) is.
func (a *Aggregator) Aggregate(ctx context.Context, asset domain.Asset, asOf time.Time) ([]domain.Document, string, error) {
	if len(a.sources) == 0 {
		return nil, "", ErrNoSources
	}

	// Per-source slots keep fan-in order deterministic regardless of which
	// fetch finishes first.
	fetched := make([][]domain.Document, len(a.sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxParallel)
	for i, src := range a.sources {
		i, src := i, src
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(gctx, a.sourceTimeout)
			defer cancel()

			docs, err := src.FetchRecent(sctx, asset, asOf)
			if err != nil {
				a.warn("source failed, skipping", "source", src.Name(), "asset", asset.Symbol, "error", err)
				return nil
			}
			fetched[i] = docs
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("aggregate %s: %w", asset.Symbol, err)
	}

	docs := a.collect(fetched, asOf)

	if a.links != nil {
		var err error
		docs, err = a.dropReported(ctx, docs)
		if err != nil {
			return nil, "", fmt.Errorf("aggregate %s: %w", asset.Symbol, err)
		}
	}

	if len(docs) == 0 {
		return nil, "", fmt.Errorf("aggregate %s: %w", asset.Symbol, ErrNoDocuments)
	}

	return docs, BuildDigest(docs), nil
}

// collect concatenates per-source results in registration order, enforcing
// the freshness window and first-seen-wins link dedup. Result order is
// first-seen order, not chronological.
func (a *Aggregator) collect(fetched [][]domain.Document, asOf time.Time) []domain.Document {
	cutoff := asOf.Add(-a.window)
	seen := make(map[string]struct{})
	var docs []domain.Document

	for _, batch := range fetched {
		for _, doc := range batch {
			if doc.Content == "" || doc.Link == "" {
				continue
			}
			if doc.PublishedAt.Before(cutoff) {
				continue
			}
			if _, dup := seen[doc.Link]; dup {
				continue
			}
			seen[doc.Link] = struct{}{}
			docs = append(docs, doc)
		}
	}

	return docs
}

func (a *Aggregator) dropReported(ctx context.Context, docs []domain.Document) ([]domain.Document, error) {
	links := make([]string, len(docs))
	for i, doc := range docs {
		links[i] = doc.Link
	}

	reported, err := a.links.SeenLinks(ctx, links)
	if err != nil {
		return nil, fmt.Errorf("load reported links: %w", err)
	}

	kept := docs[:0]
	for _, doc := range docs {
		if reported[doc.Link] {
			continue
		}
		kept = append(kept, doc)
	}
	return kept, nil
}

// BuildDigest serializes documents into one text block, one section per
// document in list order. The section ordinal is the id referenced by report
// citations.
func BuildDigest(docs []domain.Document) string {
	sections := make([]string, 0, len(docs))
	for i, doc := range docs {
		sections = append(sections, fmt.Sprintf(
			"========== News Article %d ==========\nNews Title: %s\nNews Content: %s",
			i, doc.Title, strings.TrimSpace(doc.Content)))
	}
	return strings.Join(sections, "\n\n")
}

func (a *Aggregator) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
