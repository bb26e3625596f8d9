package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"ContentCurator/internal/config"
	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiClient rates items with a Gemini generative model.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

var _ ports.Oracle = (*GeminiClient)(nil)

// NewGeminiClient connects to the Gemini API with the configured key.
func NewGeminiClient(ctx context.Context, cfg config.OracleConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	modelName := cfg.Model
	if modelName == "" || strings.HasPrefix(modelName, "gpt") {
		modelName = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(safePrompt(cfg.SystemPrompt))}}
	model.ResponseMIMEType = "application/json"
	model.GenerationConfig.Temperature = genai.Ptr[float32](0.2)
	model.GenerationConfig.MaxOutputTokens = genai.Ptr[int32](400)

	return &GeminiClient{client: client, model: model}, nil
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// ScoreContent asks Gemini for a JSON rating of the item.
func (c *GeminiClient) ScoreContent(ctx context.Context, item domain.ContentItem) (*domain.OracleScore, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(BuildPrompt(item)))
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	text, err := responseText(resp)
	if err != nil {
		return nil, err
	}
	return ParseRating(text)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("gemini returned no candidates")
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return "", errors.New("gemini candidate has no content")
	}

	var b strings.Builder
	for _, part := range content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("gemini candidate has no text")
	}
	return b.String(), nil
}
