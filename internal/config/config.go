package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"SentimentReporter/internal/domain"
)

const (
	defaultTimezone  = "UTC"
	configPathEnv    = "SENTIMENT_REPORTER_CONFIG"
	databaseDSNEnv   = "DATABASE_DSN"
	openAIAPIKeyEnv  = "OPENAI_API_KEY"
	geminiAPIKeyEnv  = "GEMINI_API_KEY"
	emailAddressEnv  = "EMAIL_ADDRESS"
	emailPasswordEnv = "EMAIL_PASSWORD"
)

// Provider selects a language-model backend. Unknown names are rejected when
// the configuration is validated, never at call time.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// Duration wraps time.Duration with YAML decoding of strings like "24h".
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Database  DatabaseConfig  `yaml:"database"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	News      NewsConfig      `yaml:"news"`
	Report    ReportConfig    `yaml:"report"`
	Generator ModelConfig     `yaml:"generator"`
	Critic    ModelConfig     `yaml:"critic"`
	Email     EmailConfig     `yaml:"email"`
	Assets    []AssetConfig   `yaml:"assets"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes the optional Postgres connection for cross-run
// link deduplication. Empty DSN disables persistence.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines when report batches should run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NewsConfig tunes the aggregation fan-out.
type NewsConfig struct {
	Window        Duration        `yaml:"window"`
	SourceTimeout Duration        `yaml:"sourceTimeout"`
	MaxParallel   int             `yaml:"maxParallel"`
	RSSFeeds      []RSSFeedConfig `yaml:"rssFeeds"`
}

// RSSFeedConfig describes one additional RSS/Atom source.
type RSSFeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// ReportConfig bounds the generate/critique loop.
type ReportConfig struct {
	MaxRounds int      `yaml:"maxRounds"`
	Cooldown  Duration `yaml:"cooldown"`
}

// ModelConfig selects provider and model for one role (generator or critic).
type ModelConfig struct {
	Provider Provider `yaml:"provider"`
	Model    string   `yaml:"model"`
	Endpoint string   `yaml:"endpoint"`
	APIKey   string   `yaml:"apiKey"`
}

// EmailConfig wires SMTP delivery of the assembled report batches.
type EmailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Password string `yaml:"password"`
}

// AssetConfig is the YAML form of one tracked trading asset.
type AssetConfig struct {
	Type     string `yaml:"type"`
	Symbol   string `yaml:"symbol"`
	Exchange string `yaml:"exchange"`
	Alias    string `yaml:"alias"`
}

// ToDomain converts the YAML asset entry to the domain model.
func (a AssetConfig) ToDomain() domain.Asset {
	return domain.Asset{
		Type:     domain.AssetType(a.Type),
		Symbol:   a.Symbol,
		Exchange: domain.Exchange(a.Exchange),
		Alias:    a.Alias,
	}
}

// DomainAssets converts the configured asset list to domain models,
// preserving order.
func (c Config) DomainAssets() []domain.Asset {
	assets := make([]domain.Asset, 0, len(c.Assets))
	for _, a := range c.Assets {
		assets = append(assets, a.ToDomain())
	}
	return assets
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			cfg = defaultConfig()
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

// Validate rejects configurations the pipeline cannot run with. Provider and
// exchange names are checked here so bad values never reach a model call.
func (c Config) Validate() error {
	if c.Report.MaxRounds < 1 {
		return fmt.Errorf("report.maxRounds must be positive, got %d", c.Report.MaxRounds)
	}
	if c.News.Window <= 0 {
		return fmt.Errorf("news.window must be positive")
	}
	for _, role := range []struct {
		name string
		cfg  ModelConfig
	}{{"generator", c.Generator}, {"critic", c.Critic}} {
		switch role.cfg.Provider {
		case ProviderOpenAI, ProviderGemini:
		default:
			return fmt.Errorf("%s.provider: unknown provider %q", role.name, role.cfg.Provider)
		}
	}
	for _, asset := range c.Assets {
		if err := asset.ToDomain().Validate(); err != nil {
			return fmt.Errorf("assets: %w", err)
		}
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.applyModelKey(ProviderOpenAI, v)
	}

	if v := os.Getenv(geminiAPIKeyEnv); v != "" {
		c.applyModelKey(ProviderGemini, v)
	}

	if v := os.Getenv(emailAddressEnv); v != "" {
		c.Email.From = v
		if c.Email.To == "" {
			c.Email.To = v
		}
	}

	if v := os.Getenv(emailPasswordEnv); v != "" {
		c.Email.Password = v
	}
}

func (c *Config) applyModelKey(provider Provider, key string) {
	if c.Generator.Provider == provider && c.Generator.APIKey == "" {
		c.Generator.APIKey = key
	}
	if c.Critic.Provider == provider && c.Critic.APIKey == "" {
		c.Critic.APIKey = key
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
		News: NewsConfig{
			// The upstream adapters historically documented a 7-day window but
			// shipped 24h; 24h is the deliberate default here.
			Window:        Duration(24 * time.Hour),
			SourceTimeout: Duration(20 * time.Second),
			MaxParallel:   4,
		},
		Report: ReportConfig{
			MaxRounds: 3,
			Cooldown:  Duration(30 * time.Second),
		},
		Generator: ModelConfig{Provider: ProviderOpenAI, Model: "gpt-4o-mini"},
		Critic:    ModelConfig{Provider: ProviderGemini, Model: "gemini-2.0-flash"},
		Email:     EmailConfig{Host: "smtp.gmail.com", Port: 465},
		Assets: []AssetConfig{
			{Type: "crypto", Symbol: "BTCUSDT", Exchange: "BINANCE", Alias: "Bitcoin"},
			{Type: "stock", Symbol: "NVDA", Exchange: "NASDAQ", Alias: "Nvidia"},
		},
	}
}
