package parser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"ContentCurator/internal/connector"
	"ContentCurator/internal/domain"
)

const defaultSearchLimit = 50

// GitHubConnector discovers projects through repository search.
type GitHubConnector struct {
	name  string
	query string
	limit int
	gh    *gh.Client
}

var _ connector.Connector = (*GitHubConnector)(nil)

// NewGitHubConnector builds a search connector. An empty token uses anonymous access;
// baseURL overrides the API endpoint for GitHub Enterprise or tests.
func NewGitHubConnector(ctx context.Context, name, query string, limit int, token, baseURL string) (*GitHubConnector, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: github source %s needs a query", domain.ErrInvalidConfig, name)
	}
	if limit <= 0 || limit > 100 {
		limit = defaultSearchLimit
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	if token != "" {
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
		httpClient.Timeout = 30 * time.Second
	}

	client := gh.NewClient(httpClient)
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		parsed, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("%w: github base url: %v", domain.ErrInvalidConfig, err)
		}
		client.BaseURL = parsed
	}

	return &GitHubConnector{name: name, query: query, limit: limit, gh: client}, nil
}

// Name identifies the connector inside the registry.
func (g *GitHubConnector) Name() string {
	return g.name
}

// Fetch runs the repository search ordered by stars.
func (g *GitHubConnector) Fetch(ctx context.Context) (connector.RawBatch, error) {
	opts := &gh.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: gh.ListOptions{PerPage: g.limit},
	}
	result, _, err := g.gh.Search.Repositories(ctx, g.query, opts)
	if err != nil {
		return connector.RawBatch{}, classifyGitHubError(err)
	}
	return connector.RawBatch{Source: g.name, FetchedAt: time.Now().UTC(), Payload: result.Repositories}, nil
}

// Transform maps repositories onto project items.
func (g *GitHubConnector) Transform(batch connector.RawBatch) ([]domain.ContentItem, error) {
	repos, ok := batch.Payload.([]*gh.Repository)
	if !ok {
		return nil, fmt.Errorf("github: unexpected payload %T", batch.Payload)
	}

	items := make([]domain.ContentItem, 0, len(repos))
	for _, repo := range repos {
		if repo == nil || repo.GetArchived() || repo.GetFork() {
			continue
		}

		tags := append([]string(nil), repo.Topics...)
		if lang := repo.GetLanguage(); lang != "" {
			tags = append(tags, strings.ToLower(lang))
		}
		tags = append(tags, "open source")

		published := repo.GetPushedAt().Time
		if published.IsZero() {
			published = repo.GetUpdatedAt().Time
		}

		items = append(items, domain.ContentItem{
			Title:       repo.GetFullName(),
			Description: repo.GetDescription(),
			URL:         repo.GetHTMLURL(),
			Source:      g.name,
			PublishedAt: published,
			Tags:        tags,
			Details: domain.ProjectDetails{
				Stars:      repo.GetStargazersCount(),
				Author:     repo.GetOwner().GetLogin(),
				Language:   repo.GetLanguage(),
				LaunchDate: repo.GetCreatedAt().Time,
			},
		})
	}
	return items, nil
}

func classifyGitHubError(err error) error {
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("github rate limited until %s: %w", rateErr.Rate.Reset.Time.Format(time.RFC3339), err)
	}
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return fmt.Errorf("github secondary rate limit: %w", err)
	}
	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusUnprocessableEntity:
			return connector.Permanent(fmt.Errorf("github search: %w", err))
		}
	}
	return fmt.Errorf("github search: %w", err)
}
