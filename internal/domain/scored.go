package domain

// Recommendation is the scorer's advice for an item.
type Recommendation string

const (
	RecommendReject  Recommendation = "reject"
	RecommendReview  Recommendation = "review"
	RecommendApprove Recommendation = "approve"
	RecommendFeature Recommendation = "feature"
)

// Factors holds the capped per-factor contributions to a score.
type Factors struct {
	Quality      float64 `json:"quality"`
	Relevance    float64 `json:"relevance"`
	Freshness    float64 `json:"freshness"`
	Completeness float64 `json:"completeness"`
}

// Total sums the four factors.
func (f Factors) Total() float64 {
	return f.Quality + f.Relevance + f.Freshness + f.Completeness
}

// ScoredItem is a content item enriched with its run-scoped score.
type ScoredItem struct {
	Item           ContentItem
	Score          float64
	Confidence     float64
	Factors        Factors
	OracleBoost    float64
	Recommendation Recommendation
	Warnings       []string
}
