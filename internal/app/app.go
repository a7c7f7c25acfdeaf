package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"SentimentReporter/internal/config"
	"SentimentReporter/internal/critique"
	"SentimentReporter/internal/infrastructure/email"
	"SentimentReporter/internal/infrastructure/llm"
	"SentimentReporter/internal/infrastructure/scheduler"
	"SentimentReporter/internal/infrastructure/sources"
	"SentimentReporter/internal/infrastructure/storage"
	"SentimentReporter/internal/logging"
	"SentimentReporter/internal/news"
	"SentimentReporter/internal/ports"
	"SentimentReporter/internal/usecase"
)

// Application wires configuration to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	scheduler *usecase.Scheduler
}

// New builds a runnable application instance. Configuration is validated
// here so unknown providers or exchanges never reach a model call.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	httpClient := &http.Client{Timeout: 20 * time.Second}
	window := cfg.News.Window.Std()

	srcs := []ports.NewsSource{
		sources.NewYahooSource(httpClient, window),
		sources.NewTradingViewSource(httpClient, window),
		sources.NewFinvizSource(httpClient, window),
	}
	for _, feed := range cfg.News.RSSFeeds {
		srcs = append(srcs, sources.NewRSSSource(feed.Name, feed.URL, httpClient, window))
	}

	var links ports.LinkRepository
	if cfg.Database.DSN != "" {
		db, err := storage.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		links = storage.NewPostgresLinkRepository(db)
	}

	aggregator := news.NewAggregator(srcs, news.Options{
		Window:        window,
		SourceTimeout: cfg.News.SourceTimeout.Std(),
		MaxParallel:   cfg.News.MaxParallel,
		Links:         links,
	}, logging.Component(baseLogger, "news"))

	// One limiter across generator, critic and formatter keeps the combined
	// call rate inside provider limits.
	modelLimiter := rate.NewLimiter(rate.Every(2*time.Second), 1)
	generatorModel := buildModel(cfg.Generator, modelLimiter)
	criticModel := buildModel(cfg.Critic, modelLimiter)

	loop := critique.NewLoop(
		llm.NewGeneratorRole(generatorModel),
		llm.NewCriticRole(criticModel),
		cfg.Report.MaxRounds,
		logging.Component(baseLogger, "critique"),
	)

	var deliverer ports.Deliverer
	if cfg.Email.From != "" && cfg.Email.Password != "" {
		deliverer = email.NewSMTPDeliverer(cfg.Email)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Aggregator: aggregator,
		Loop:       loop,
		Formatter:  llm.NewFormatterRole(generatorModel),
		Deliverer:  deliverer,
		Links:      links,
		Cooldown:   cfg.Report.Cooldown.Std(),
		Logger:     logging.Component(baseLogger, "pipeline"),
	})

	sched := usecase.NewScheduler(
		scheduler.NewDailyScheduler(cfg.Scheduler.CronExpression),
		pipeline,
		cfg.DomainAssets(),
	)

	return &Application{cfg: cfg, scheduler: sched}, nil
}

// Run starts the recurring batch schedule and blocks until the context is
// cancelled.
func (a *Application) Run(ctx context.Context) error {
	if a.scheduler == nil {
		return nil
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	return a.scheduler.Stop(context.Background())
}

func buildModel(cfg config.ModelConfig, limiter *rate.Limiter) ports.ChatModel {
	if cfg.Provider == config.ProviderGemini {
		return llm.NewGeminiClient(cfg, limiter)
	}
	return llm.NewOpenAIClient(cfg, limiter)
}
