package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"ContentCurator/internal/domain"
)

const ratingInstruction = `Rate the following candidate for a curated directory.
Respond with JSON only, using this shape:
{"overall": <number between 0 and 1>, "reasoning": "<one sentence>", "categories": ["<topic>"], "sentiment": "positive|neutral|negative"}`

// BuildPrompt renders the item as the user message of a rating request.
func BuildPrompt(item domain.ContentItem) string {
	var b strings.Builder
	b.WriteString(ratingInstruction)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Category: %s\n", item.Category())
	fmt.Fprintf(&b, "Title: %s\n", item.Title)
	if item.URL != "" {
		fmt.Fprintf(&b, "URL: %s\n", item.URL)
	}
	if item.Source != "" {
		fmt.Fprintf(&b, "Source: %s\n", item.Source)
	}
	if len(item.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(item.Tags, ", "))
	}
	fmt.Fprintf(&b, "Description:\n%s\n", strings.TrimSpace(item.Description))
	return b.String()
}

// ParseRating extracts the oracle score from a model reply, tolerating code fences.
func ParseRating(text string) (*domain.OracleScore, error) {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)
	if start, end := strings.Index(clean, "{"), strings.LastIndex(clean, "}"); start >= 0 && end > start {
		clean = clean[start : end+1]
	}

	var score domain.OracleScore
	if err := json.Unmarshal([]byte(clean), &score); err != nil {
		return nil, fmt.Errorf("parse rating: %w", err)
	}
	if math.IsNaN(score.Overall) {
		return nil, fmt.Errorf("parse rating: overall is not a number")
	}
	score.Overall = math.Max(0, math.Min(1, score.Overall))
	return &score, nil
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You rate community content for a curated directory."
	}
	return prompt
}
