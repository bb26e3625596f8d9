package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentCurator/internal/config"
	"ContentCurator/internal/domain"
)

func sampleItem() domain.ContentItem {
	return domain.ContentItem{
		Title:       "Retro funding round",
		Description: "Quarterly retroactive funding for open source infrastructure.",
		URL:         "https://grants.example.com/retro",
		Source:      "feed",
		Tags:        []string{"grant", "public goods"},
		Details:     domain.FundingDetails{Organization: "Collective"},
	}
}

func TestBuildPromptIncludesItemFields(t *testing.T) {
	t.Parallel()

	prompt := BuildPrompt(sampleItem())
	for _, want := range []string{"Category: funding", "Retro funding round", "grants.example.com/retro", "public goods", `"overall"`} {
		assert.Contains(t, prompt, want)
	}
}

func TestParseRating(t *testing.T) {
	t.Parallel()

	score, err := ParseRating("```json\n{\"overall\": 0.8, \"reasoning\": \"solid\", \"categories\": [\"web3\"]}\n```")
	require.NoError(t, err)
	assert.Equal(t, 0.8, score.Overall)
	assert.Equal(t, "solid", score.Reasoning)
	assert.Equal(t, []string{"web3"}, score.Categories)

	clamped, err := ParseRating(`Sure! {"overall": 1.7}`)
	require.NoError(t, err)
	assert.Equal(t, 1.0, clamped.Overall)

	_, err = ParseRating("no json here")
	require.Error(t, err)
}

func TestChatGPTClientScoresContent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-test", body["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"overall\":0.65,\"sentiment\":\"positive\"}"}}]}`))
	}))
	t.Cleanup(srv.Close)

	client := NewChatGPTClient(config.OracleConfig{Endpoint: srv.URL, Model: "gpt-test", APIKey: "secret"})
	score, err := client.ScoreContent(context.Background(), sampleItem())
	require.NoError(t, err)
	assert.Equal(t, 0.65, score.Overall)
	assert.Equal(t, "positive", score.Sentiment)
}

func TestChatGPTClientSurfacesErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	client := NewChatGPTClient(config.OracleConfig{Endpoint: srv.URL, Model: "gpt-test", APIKey: "secret"})
	_, err := client.ScoreContent(context.Background(), sampleItem())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	_, err = NewChatGPTClient(config.OracleConfig{}).ScoreContent(context.Background(), sampleItem())
	require.Error(t, err)
}

func TestGeminiResponseText(t *testing.T) {
	t.Parallel()

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"overall":`), genai.Text(`0.4}`)}},
		}},
	}
	text, err := responseText(resp)
	require.NoError(t, err)

	score, err := ParseRating(text)
	require.NoError(t, err)
	assert.Equal(t, 0.4, score.Overall)

	_, err = responseText(&genai.GenerateContentResponse{})
	require.Error(t, err)
	_, err = responseText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}})
	require.Error(t, err)
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := NewGeminiClient(context.Background(), config.OracleConfig{})
	require.Error(t, err)
}
