package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"SentimentReporter/internal/critique"
	"SentimentReporter/internal/domain"
	"SentimentReporter/internal/news"
	"SentimentReporter/internal/ports"
)

// PipelineDeps wires all collaborators into the report pipeline.
type PipelineDeps struct {
	Aggregator *news.Aggregator
	Loop       *critique.Loop
	Formatter  ports.Formatter
	Deliverer  ports.Deliverer
	Links      ports.LinkRepository
	// Cooldown spaces consecutive per-asset runs to respect provider rate
	// limits. Zero disables the throttle.
	Cooldown time.Duration
	Logger   *slog.Logger
}

// Pipeline orchestrates aggregation, the critique loop, formatting and
// delivery across the configured asset list.
type Pipeline struct {
	aggregator *news.Aggregator
	loop       *critique.Loop
	formatter  ports.Formatter
	deliverer  ports.Deliverer
	links      ports.LinkRepository
	cooldown   *rate.Limiter
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	var cooldown *rate.Limiter
	if deps.Cooldown > 0 {
		cooldown = rate.NewLimiter(rate.Every(deps.Cooldown), 1)
	}
	return &Pipeline{
		aggregator: deps.Aggregator,
		loop:       deps.Loop,
		formatter:  deps.Formatter,
		deliverer:  deps.Deliverer,
		links:      deps.Links,
		cooldown:   cooldown,
		logger:     deps.Logger,
	}
}

// RunForAsset produces the formatted email section for one asset. An
// exhausted retry budget is not an error: it returns an empty section and the
// asset contributes nothing to the batch.
func (p *Pipeline) RunForAsset(ctx context.Context, asset domain.Asset, asOf time.Time) (string, error) {
	docs, digest, err := p.aggregator.Aggregate(ctx, asset, asOf)
	if err != nil {
		return "", fmt.Errorf("aggregate news: %w", err)
	}

	result, err := p.loop.Run(ctx, asset, digest)
	if err != nil {
		return "", fmt.Errorf("critique loop: %w", err)
	}
	if !result.Passed {
		p.warn("no accepted report", "asset", asset.Symbol, "turns", result.Conversation.Len())
		return "", nil
	}

	section, err := p.formatter.FormatEmail(ctx, asset, result.Report, docs)
	if err != nil {
		return "", fmt.Errorf("format email: %w", err)
	}

	if p.links != nil {
		if err := p.links.MarkReported(ctx, citedDocuments(result.Report.Citations, docs)); err != nil {
			// Persistence is best-effort; the report is already accepted.
			p.warn("mark reported links", "asset", asset.Symbol, "error", err)
		}
	}

	return section, nil
}

// RunBatch processes every configured asset in order and delivers one email
// per asset type. A failing asset is logged and skipped, never aborting the
// rest; asset types with zero sections suppress delivery entirely.
func (p *Pipeline) RunBatch(ctx context.Context, assets []domain.Asset, day time.Time) error {
	sections := make(map[domain.AssetType][]string)
	var typeOrder []domain.AssetType

	for _, asset := range assets {
		if p.cooldown != nil {
			if err := p.cooldown.Wait(ctx); err != nil {
				return fmt.Errorf("cooldown wait: %w", err)
			}
		}

		section, err := p.RunForAsset(ctx, asset, day)
		if err != nil {
			p.error("report generation failed", "asset", asset.Symbol, "error", err)
			continue
		}
		if section == "" {
			continue
		}

		if _, ok := sections[asset.Type]; !ok {
			typeOrder = append(typeOrder, asset.Type)
		}
		sections[asset.Type] = append(sections[asset.Type], section)
		p.info("report generated", "asset", asset.Symbol)
	}

	if p.deliverer == nil {
		return nil
	}

	for _, assetType := range typeOrder {
		subject := buildSubject(day, assetType)
		if err := p.deliverer.Deliver(ctx, subject, buildBatchHTML(sections[assetType])); err != nil {
			p.error("delivery failed", "subject", subject, "error", err)
			continue
		}
		p.info("batch delivered", "subject", subject, "sections", len(sections[assetType]))
	}

	return nil
}

func citedDocuments(citations []int, docs []domain.Document) []domain.Document {
	cited := make([]domain.Document, 0, len(citations))
	for _, id := range citations {
		if id >= 0 && id < len(docs) {
			cited = append(cited, docs[id])
		}
	}
	return cited
}

func buildBatchHTML(sections []string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<body>
%s
</body>
</html>
`, strings.Join(sections, "<br><br>"))
}

func buildSubject(day time.Time, assetType domain.AssetType) string {
	label := "Stocks"
	if assetType == domain.AssetCrypto {
		label = "Crypto"
	}
	return fmt.Sprintf("%s %s Sentiment Report", day.Format("2006-01-02"), label)
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) error(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}
