package parser

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"ContentCurator/internal/connector"
	"ContentCurator/internal/domain"
)

const maxFeedBytes = 10 << 20

//go:embed feed.schema.json
var feedSchemaJSON []byte

type feedDocument struct {
	Items []feedEntry `json:"items"`
}

type feedEntry struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	URL         string          `json:"url"`
	PublishedAt string          `json:"published_at"`
	Tags        []string        `json:"tags"`
	Details     json.RawMessage `json:"details"`
}

// FieldError is one schema violation.
type FieldError struct {
	Field   string
	Message string
}

// SchemaError reports a feed document that does not match the feed schema.
type SchemaError struct {
	URL    string
	Errors []FieldError
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return fmt.Sprintf("feed %s violates schema: %s", e.URL, strings.Join(parts, "; "))
}

// FeedConnector reads JSON feeds of a single category.
type FeedConnector struct {
	name     string
	category domain.Category
	urls     []string
	client   *http.Client
	schema   *gojsonschema.Schema
}

var _ connector.Connector = (*FeedConnector)(nil)

// NewFeedConnector compiles the feed schema and binds the feed URLs.
func NewFeedConnector(name string, category domain.Category, urls []string, client *http.Client) (*FeedConnector, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(feedSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile feed schema: %w", err)
	}
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &FeedConnector{name: name, category: category, urls: urls, client: client, schema: schema}, nil
}

// Name identifies the connector inside the registry.
func (f *FeedConnector) Name() string {
	return f.name
}

// Fetch downloads and schema-checks every feed URL. Schema violations are permanent.
func (f *FeedConnector) Fetch(ctx context.Context) (connector.RawBatch, error) {
	var entries []feedEntry
	for _, u := range f.urls {
		body, err := f.download(ctx, u)
		if err != nil {
			return connector.RawBatch{}, err
		}
		if err := f.validate(u, body); err != nil {
			return connector.RawBatch{}, connector.Permanent(err)
		}

		var doc feedDocument
		if err := json.Unmarshal(body, &doc); err != nil {
			return connector.RawBatch{}, connector.Permanent(fmt.Errorf("decode feed %s: %w", u, err))
		}
		entries = append(entries, doc.Items...)
	}
	return connector.RawBatch{Source: f.name, FetchedAt: time.Now().UTC(), Payload: entries}, nil
}

// Transform maps feed entries onto the connector's category.
func (f *FeedConnector) Transform(batch connector.RawBatch) ([]domain.ContentItem, error) {
	entries, ok := batch.Payload.([]feedEntry)
	if !ok {
		return nil, fmt.Errorf("feed: unexpected payload %T", batch.Payload)
	}

	items := make([]domain.ContentItem, 0, len(entries))
	var errs []error
	for _, e := range entries {
		details, err := domain.DecodeDetails(f.category, e.Details)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %q: %w", e.URL, err))
			continue
		}

		var published time.Time
		if e.PublishedAt != "" {
			published, _ = time.Parse(time.RFC3339, e.PublishedAt)
		}

		items = append(items, domain.ContentItem{
			Title:       strings.TrimSpace(e.Title),
			Description: strings.TrimSpace(e.Description),
			URL:         strings.TrimSpace(e.URL),
			Source:      f.name,
			PublishedAt: published,
			Tags:        e.Tags,
			Details:     details,
		})
	}
	if len(items) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return items, nil
}

func (f *FeedConnector) download(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, connector.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed %s: %w", u, err)
	}
	defer resp.Body.Close()

	if err := statusError("feed "+u, resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read feed %s: %w", u, err)
	}
	return body, nil
}

func (f *FeedConnector) validate(u string, body []byte) error {
	result, err := f.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("load feed %s: %w", u, err)
	}
	if result.Valid() {
		return nil
	}

	schemaErr := &SchemaError{URL: u, Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		schemaErr.Errors = append(schemaErr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return schemaErr
}
