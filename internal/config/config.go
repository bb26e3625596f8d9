package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"ContentCurator/internal/domain"
)

const (
	configPathEnv     = "CONTENT_CURATOR_CONFIG"
	databaseDriverEnv = "DATABASE_DRIVER"
	databaseDSNEnv    = "DATABASE_DSN"
	oracleProviderEnv = "ORACLE_PROVIDER"
	oracleAPIKeyEnv   = "ORACLE_API_KEY"
	oracleModelEnv    = "ORACLE_MODEL"
	githubTokenEnv    = "GITHUB_TOKEN"
	logLevelEnv       = "LOG_LEVEL"
	serverAddrEnv     = "SERVER_ADDR"
)

// Oracle providers.
const (
	OracleNone    = "none"
	OracleHTTP    = "http"
	OracleChatGPT = "chatgpt"
	OracleGemini  = "gemini"
)

// Source kinds understood by the connector factory.
const (
	SourceArxiv  = "arxiv"
	SourceFeed   = "feed"
	SourceGitHub = "github"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Retry     RetryConfig     `yaml:"retry"`
	Approval  ApprovalConfig  `yaml:"approval"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Server    ServerConfig    `yaml:"server"`
	Oracle    OracleConfig    `yaml:"oracle"`
	GitHub    GitHubConfig    `yaml:"github"`
	Logging   LoggingConfig   `yaml:"logging"`
	Sources   []SourceConfig  `yaml:"sources"`
}

// DatabaseConfig selects the SQL driver and connection string.
type DatabaseConfig struct {
	Driver      string `yaml:"driver"`
	DSN         string `yaml:"dsn"`
	AutoMigrate bool   `yaml:"autoMigrate"`
}

// PipelineConfig holds the default run policy.
type PipelineConfig struct {
	BatchSize            int     `yaml:"batchSize"`
	ScoreThreshold       float64 `yaml:"scoreThreshold"`
	EvaluationMultiplier int     `yaml:"evaluationMultiplier"`
	MaxErrors            int     `yaml:"maxErrors"`
}

// RunConfig converts the defaults into a per-run configuration.
func (p PipelineConfig) RunConfig() domain.RunConfig {
	return domain.RunConfig{BatchSize: p.BatchSize, ScoreThreshold: p.ScoreThreshold}
}

// RetryConfig is the fetch policy applied to every connector.
type RetryConfig struct {
	MaxRetries      int           `yaml:"maxRetries"`
	InitialInterval time.Duration `yaml:"initialInterval"`
	MaxInterval     time.Duration `yaml:"maxInterval"`
	Timeout         time.Duration `yaml:"timeout"`
	Concurrency     int           `yaml:"concurrency"`
}

// ApprovalConfig bounds auto-approval.
type ApprovalConfig struct {
	PageSize       int     `yaml:"pageSize"`
	AutoApproveMin float64 `yaml:"autoApproveMin"`
}

// SchedulerConfig defines how often the pipeline runs under serve.
type SchedulerConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Interval   time.Duration `yaml:"interval"`
	RunOnStart bool          `yaml:"runOnStart"`
}

// ServerConfig configures the HTTP review surface.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	Mode            string        `yaml:"mode"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// OracleConfig selects and configures the optional scoring oracle.
type OracleConfig struct {
	Provider      string        `yaml:"provider"`
	Endpoint      string        `yaml:"endpoint"`
	APIKey        string        `yaml:"apiKey"`
	Model         string        `yaml:"model"`
	SystemPrompt  string        `yaml:"systemPrompt"`
	Timeout       time.Duration `yaml:"timeout"`
	RatePerSecond float64       `yaml:"ratePerSecond"`
	Burst         int           `yaml:"burst"`
}

// GitHubConfig holds credentials for GitHub-backed sources.
type GitHubConfig struct {
	Token   string `yaml:"token"`
	BaseURL string `yaml:"baseUrl"`
}

// LoggingConfig controls the zap-backed slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SourceConfig describes a single connector instance.
type SourceConfig struct {
	Name     string            `yaml:"name"`
	Kind     string            `yaml:"kind"`
	Category string            `yaml:"category"`
	URLs     []string          `yaml:"urls"`
	Query    string            `yaml:"query"`
	Limit    int               `yaml:"limit"`
	Options  map[string]string `yaml:"options"`
}

// Load reads YAML configuration (if present) over defaults and applies environment overrides.
func Load() (Config, error) {
	return LoadFrom(os.Getenv(configPathEnv))
}

// LoadFrom is Load with an explicit file path; an empty path skips the file.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDriverEnv); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(oracleProviderEnv); v != "" {
		c.Oracle.Provider = v
	}
	if v := os.Getenv(oracleAPIKeyEnv); v != "" {
		c.Oracle.APIKey = v
	}
	if v := os.Getenv(oracleModelEnv); v != "" {
		c.Oracle.Model = v
	}
	if v := os.Getenv(githubTokenEnv); v != "" {
		c.GitHub.Token = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(serverAddrEnv); v != "" {
		c.Server.Addr = v
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if err := c.Pipeline.RunConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("pipeline: %w", err))
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("database: unsupported driver %q", c.Database.Driver))
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		errs = append(errs, errors.New("database: dsn is required"))
	}
	switch c.Oracle.Provider {
	case "", OracleNone, OracleHTTP, OracleChatGPT, OracleGemini:
	default:
		errs = append(errs, fmt.Errorf("oracle: unknown provider %q", c.Oracle.Provider))
	}
	if c.Oracle.Provider == OracleHTTP && c.Oracle.Endpoint == "" {
		errs = append(errs, errors.New("oracle: http provider needs an endpoint"))
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging: unknown format %q", c.Logging.Format))
	}

	seen := map[string]bool{}
	for i, src := range c.Sources {
		if src.Name == "" {
			errs = append(errs, fmt.Errorf("sources[%d]: name is required", i))
		} else if seen[src.Name] {
			errs = append(errs, fmt.Errorf("sources[%d]: duplicate name %q", i, src.Name))
		}
		seen[src.Name] = true

		switch src.Kind {
		case SourceArxiv:
		case SourceGitHub:
			if strings.TrimSpace(src.Query) == "" {
				errs = append(errs, fmt.Errorf("sources[%d]: github source needs a query", i))
			}
		case SourceFeed:
			if _, err := domain.ParseCategory(src.Category); err != nil {
				errs = append(errs, fmt.Errorf("sources[%d]: %w", i, err))
			}
		default:
			errs = append(errs, fmt.Errorf("sources[%d]: unknown kind %q", i, src.Kind))
		}
		if src.Kind != SourceGitHub && len(src.URLs) == 0 {
			errs = append(errs, fmt.Errorf("sources[%d]: at least one url is required", i))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, errors.Join(errs...))
}

// Default returns the settings used when no file or environment overrides exist.
func Default() Config {
	return Config{
		Database: DatabaseConfig{Driver: "sqlite", DSN: "contentcurator.db", AutoMigrate: true},
		Pipeline: PipelineConfig{
			BatchSize:            50,
			ScoreThreshold:       30,
			EvaluationMultiplier: 3,
			MaxErrors:            50,
		},
		Retry: RetryConfig{
			MaxRetries:      2,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
			Timeout:         20 * time.Second,
			Concurrency:     8,
		},
		Approval:  ApprovalConfig{PageSize: 100, AutoApproveMin: 75},
		Scheduler: SchedulerConfig{Enabled: false, Interval: 6 * time.Hour, RunOnStart: true},
		Server:    ServerConfig{Addr: ":8080", Mode: "release", ShutdownTimeout: 10 * time.Second},
		Oracle: OracleConfig{
			Provider:      OracleNone,
			Endpoint:      "https://api.openai.com/v1/chat/completions",
			Model:         "gpt-4o-mini",
			SystemPrompt:  "You rate community content for a curated directory of projects, funding programs and learning resources.",
			Timeout:       15 * time.Second,
			RatePerSecond: 2,
			Burst:         2,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Sources: []SourceConfig{
			{
				Name:     "arxiv-ai",
				Kind:     SourceArxiv,
				Category: string(domain.CategoryResource),
				URLs:     []string{"https://export.arxiv.org/list/cs.AI/pastweek"},
			},
		},
	}
}
