package ports

import (
	"context"
	"time"

	"SentimentReporter/internal/domain"
)

// NewsSource pulls recent articles for one asset from an upstream provider.
// Implementations apply the configured freshness window themselves and must
// document whether they filter before or after normalization.
type NewsSource interface {
	Name() string
	FetchRecent(ctx context.Context, asset domain.Asset, asOf time.Time) ([]domain.Document, error)
}

// ChatModel is a synchronous request/response language-model client.
// CompleteStructured constrains the response to the given JSON schema and
// decodes it into out.
type ChatModel interface {
	Complete(ctx context.Context, system, user string) (string, error)
	CompleteStructured(ctx context.Context, system, user string, schema map[string]any, out any) error
}

// Generator produces a fresh structured report from the digest. On retry
// rounds the full conversation is supplied so prior criticisms can be
// addressed.
type Generator interface {
	GenerateReport(ctx context.Context, asset domain.Asset, digest string, conversation domain.Conversation) (domain.Report, error)
}

// Critic grades the latest report on two independent dimensions.
type Critic interface {
	GradeUsefulness(ctx context.Context, asset domain.Asset, report string) (domain.Verdict, error)
	GradeGroundedness(ctx context.Context, digest, report string) (domain.Verdict, error)
}

// Formatter turns one accepted report into a transport-ready HTML section.
type Formatter interface {
	FormatEmail(ctx context.Context, asset domain.Asset, report domain.Report, docs []domain.Document) (string, error)
}

// Deliverer ships an assembled batch document to the outbound channel.
type Deliverer interface {
	Deliver(ctx context.Context, subject, htmlBody string) error
}

// LinkRepository persists reported article links for cross-run deduplication.
type LinkRepository interface {
	SeenLinks(ctx context.Context, links []string) (map[string]bool, error)
	MarkReported(ctx context.Context, docs []domain.Document) error
}

// Scheduler controls when report batches execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
