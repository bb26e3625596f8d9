// Package scoring computes the deterministic quality score of a content item and
// optionally blends in an external oracle rating.
package scoring

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

const (
	maxQuality      = 30
	maxRelevance    = 30
	maxFreshness    = 20
	maxCompleteness = 20

	pointsPerKeyword = 5

	// OracleMinScore is the rule score an item needs before the oracle is consulted.
	OracleMinScore = 40
	// MaxOracleBoost bounds the additive oracle contribution.
	MaxOracleBoost = 20

	// MinConfidence is the confidence below which an item is always rejected.
	MinConfidence = 0.4
)

// DefaultVocabulary is the fixed domain vocabulary used for relevance.
var DefaultVocabulary = []string{
	"ai", "artificial intelligence", "machine learning", "llm", "blockchain", "web3",
	"crypto", "defi", "dao", "nft", "smart contract", "ethereum", "solana", "protocol",
	"platform", "open source", "developer", "startup", "funding", "grant", "accelerator",
	"hackathon", "decentralized", "infrastructure", "sdk", "api", "dataset", "research",
}

// Option customises a Scorer.
type Option func(*Scorer)

// WithClock replaces the wall clock used for freshness.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) { s.now = now }
}

// WithVocabulary replaces the relevance vocabulary.
func WithVocabulary(words []string) Option {
	return func(s *Scorer) { s.vocabulary = normalizeVocabulary(words) }
}

// Scorer is safe for concurrent use; it holds no per-item state.
type Scorer struct {
	oracle     ports.Oracle
	logger     *slog.Logger
	now        func() time.Time
	vocabulary []string
}

// New builds a scorer. A nil oracle means rule-based scoring only.
func New(oracle ports.Oracle, logger *slog.Logger, opts ...Option) *Scorer {
	s := &Scorer{
		oracle:     oracle,
		logger:     logger,
		now:        time.Now,
		vocabulary: normalizeVocabulary(DefaultVocabulary),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score rates the item and derives its recommendation against rejectFloor.
func (s *Scorer) Score(ctx context.Context, item domain.ContentItem, rejectFloor float64) domain.ScoredItem {
	factors := domain.Factors{
		Quality:      qualityScore(item),
		Relevance:    s.relevanceScore(item),
		Freshness:    freshnessScore(item.PublishedAt, s.now()),
		Completeness: completenessScore(item),
	}

	scored := domain.ScoredItem{
		Item:       item,
		Score:      factors.Total(),
		Confidence: confidence(item),
		Factors:    factors,
	}

	if scored.Score >= OracleMinScore {
		scored.OracleBoost = s.oracleBoost(ctx, item)
		scored.Score = math.Min(100, scored.Score+scored.OracleBoost)
	}

	scored.Recommendation = Recommend(scored.Score, scored.Confidence, rejectFloor)
	return scored
}

// Recommend maps a score and confidence to a recommendation tier.
func Recommend(score, confidence, rejectFloor float64) domain.Recommendation {
	switch {
	case score < rejectFloor || confidence < MinConfidence:
		return domain.RecommendReject
	case score < 50:
		return domain.RecommendReview
	case score < 75:
		return domain.RecommendApprove
	default:
		return domain.RecommendFeature
	}
}

func (s *Scorer) oracleBoost(ctx context.Context, item domain.ContentItem) float64 {
	if s.oracle == nil {
		return 0
	}
	rating, err := s.oracle.ScoreContent(ctx, item)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("oracle unavailable, using rule score", "url", item.URL, "error", err)
		}
		return 0
	}
	if rating == nil {
		return 0
	}
	overall := math.Max(0, math.Min(1, rating.Overall))
	return math.Round(overall*MaxOracleBoost*100) / 100
}

func qualityScore(item domain.ContentItem) float64 {
	var score float64
	if strings.TrimSpace(item.Title) != "" {
		score += 10
	}
	desc := strings.TrimSpace(item.Description)
	if desc != "" {
		score += 10
	}
	length := utf8.RuneCountInString(desc)
	if length > 100 {
		score += 5
	}
	if length > 300 {
		score += 5
	}
	return math.Min(score, maxQuality)
}

func (s *Scorer) relevanceScore(item domain.ContentItem) float64 {
	text := " " + strings.Join(tokenize(item.Title+" "+item.Description+" "+strings.Join(item.Tags, " ")), " ") + " "
	matches := 0
	for _, keyword := range s.vocabulary {
		if strings.Contains(text, " "+keyword+" ") {
			matches++
		}
	}
	return math.Min(float64(matches*pointsPerKeyword), maxRelevance)
}

func freshnessScore(published, now time.Time) float64 {
	if published.IsZero() {
		return 0
	}
	ageDays := now.Sub(published).Hours() / 24
	switch {
	case ageDays <= 7:
		return maxFreshness
	case ageDays <= 30:
		return 15
	case ageDays <= 90:
		return 10
	case ageDays <= 180:
		return 5
	case ageDays <= 365:
		return 2
	default:
		return 0
	}
}

func completenessScore(item domain.ContentItem) float64 {
	var score float64
	if strings.TrimSpace(item.URL) != "" {
		score += 5
	}
	if !item.PublishedAt.IsZero() {
		score += 5
	}
	people, metrics := detailSignals(item.Details)
	if people {
		score += 5
	}
	if metrics {
		score += 5
	}
	return math.Min(score, maxCompleteness)
}

// detailSignals reports whether the details carry team/author info and funding/metrics info.
func detailSignals(details domain.Details) (people bool, metrics bool) {
	switch d := details.(type) {
	case domain.ProjectDetails:
		return d.TeamSize > 0 || d.Author != "", d.FundingRaised > 0 || d.Stars > 0
	case domain.FundingDetails:
		return d.Organization != "", d.AmountMax > 0 || d.AmountMin > 0
	case domain.ResourceDetails:
		return d.Author != "", d.ReadingMinutes > 0
	default:
		return false, false
	}
}

func confidence(item domain.ContentItem) float64 {
	desc := strings.TrimSpace(item.Description)
	checks := []bool{
		strings.TrimSpace(item.Title) != "",
		desc != "",
		utf8.RuneCountInString(desc) > 50,
		strings.TrimSpace(item.URL) != "",
		!item.PublishedAt.IsZero(),
	}
	passed := 0
	for _, ok := range checks {
		if ok {
			passed++
		}
	}
	return math.Round(float64(passed)/float64(len(checks))*100) / 100
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalizeVocabulary(words []string) []string {
	out := make([]string, 0, len(words))
	seen := map[string]struct{}{}
	for _, w := range words {
		norm := strings.Join(tokenize(w), " ")
		if norm == "" {
			continue
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, norm)
	}
	return out
}
