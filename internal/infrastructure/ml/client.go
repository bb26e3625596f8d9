package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ContentCurator/internal/config"
	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

// Client talks to an external inference service that rates content.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.Oracle = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(cfg config.OracleConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: timeout},
	}
}

type scoreRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	URL         string   `json:"url,omitempty"`
	Source      string   `json:"source,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ScoreContent posts the item to /score. A 204 reply means the service has no opinion.
func (c *Client) ScoreContent(ctx context.Context, item domain.ContentItem) (*domain.OracleScore, error) {
	payload := scoreRequest{
		Title:       item.Title,
		Description: item.Description,
		URL:         item.URL,
		Source:      item.Source,
		Category:    string(item.Category()),
		Tags:        item.Tags,
	}

	var score domain.OracleScore
	found, err := c.post(ctx, "/score", payload, &score)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &score, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) (bool, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return true, nil
}
