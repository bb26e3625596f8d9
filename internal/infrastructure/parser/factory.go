package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ContentCurator/internal/config"
	"ContentCurator/internal/connector"
	"ContentCurator/internal/domain"
)

// Factory turns source configuration into registered connectors.
type Factory struct {
	github config.GitHubConfig
	client *http.Client
	logger *slog.Logger
}

// NewFactory shares one HTTP client between the scraping and feed connectors.
func NewFactory(github config.GitHubConfig, client *http.Client, log *slog.Logger) *Factory {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Factory{github: github, client: client, logger: log}
}

// Build creates one connector for the given source.
func (f *Factory) Build(ctx context.Context, src config.SourceConfig) (connector.Connector, error) {
	switch src.Kind {
	case config.SourceArxiv:
		var maxAge time.Duration
		if raw := src.Options["maxAge"]; raw != "" {
			d, err := time.ParseDuration(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: source %s maxAge: %v", domain.ErrInvalidConfig, src.Name, err)
			}
			maxAge = d
		}
		return NewArxivConnector(src.Name, src.URLs, f.client, maxAge), nil
	case config.SourceFeed:
		category, err := domain.ParseCategory(src.Category)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Name, err)
		}
		return NewFeedConnector(src.Name, category, src.URLs, f.client)
	case config.SourceGitHub:
		return NewGitHubConnector(ctx, src.Name, src.Query, src.Limit, f.github.Token, f.github.BaseURL)
	default:
		return nil, fmt.Errorf("%w: source %s has unknown kind %q", domain.ErrInvalidConfig, src.Name, src.Kind)
	}
}

// Registry builds every configured source. A source that fails to build aborts the whole set.
func (f *Factory) Registry(ctx context.Context, sources []config.SourceConfig) (*connector.Registry, error) {
	reg := connector.NewRegistry()
	for _, src := range sources {
		c, err := f.Build(ctx, src)
		if err != nil {
			return nil, err
		}
		f.debug("connector registered", "source", src.Name, "kind", src.Kind)
		reg.Register(c)
	}
	return reg, nil
}

func (f *Factory) debug(msg string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
