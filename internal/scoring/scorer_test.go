package scoring

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentCurator/internal/domain"
)

var fixedNow = time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)

type fakeOracle struct {
	calls  atomic.Int32
	rating *domain.OracleScore
	err    error
}

func (f *fakeOracle) ScoreContent(context.Context, domain.ContentItem) (*domain.OracleScore, error) {
	f.calls.Add(1)
	return f.rating, f.err
}

func newTestScorer(oracle *fakeOracle) *Scorer {
	if oracle == nil {
		return New(nil, nil, WithClock(func() time.Time { return fixedNow }))
	}
	return New(oracle, nil, WithClock(func() time.Time { return fixedNow }))
}

func strongProject() domain.ContentItem {
	return domain.ContentItem{
		Title: "AI Blockchain Platform",
		Description: "An open platform that combines machine learning models with an on-chain settlement layer. " +
			"Teams deploy inference jobs, verify results through a lightweight protocol and pay contributors " +
			"automatically. The project ships an SDK, a hosted API and reference integrations for popular " +
			"wallets so developers can experiment without running their own infrastructure.",
		URL:         "https://x.io",
		Source:      "github",
		PublishedAt: fixedNow,
		Details:     domain.ProjectDetails{TeamSize: 5, FundingRaised: 2_000_000},
	}
}

func TestScoreStrongProject(t *testing.T) {
	t.Parallel()

	item := strongProject()
	require.Greater(t, len(item.Description), 300)

	scored := newTestScorer(nil).Score(context.Background(), item, 30)

	assert.Greater(t, scored.Score, 60.0)
	assert.NotEqual(t, domain.RecommendReject, scored.Recommendation)
	assert.Equal(t, 30.0, scored.Factors.Quality)
	assert.Equal(t, 20.0, scored.Factors.Freshness)
	assert.Equal(t, 20.0, scored.Factors.Completeness)
	assert.Equal(t, 30.0, scored.Factors.Relevance)
	assert.Equal(t, 1.0, scored.Confidence)
}

func TestScoreSparseItemIsRejected(t *testing.T) {
	t.Parallel()

	item := domain.ContentItem{Title: "Test", Description: "Short desc"}

	scored := newTestScorer(nil).Score(context.Background(), item, 30)

	assert.Less(t, scored.Score, 30.0)
	assert.Equal(t, domain.RecommendReject, scored.Recommendation)
	assert.Equal(t, 0.4, scored.Confidence)
}

func TestRecommendBoundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		score      float64
		confidence float64
		floor      float64
		want       domain.Recommendation
	}{
		{"below floor", 29.9, 1, 30, domain.RecommendReject},
		{"low confidence", 90, 0.39, 30, domain.RecommendReject},
		{"at floor", 30, 0.4, 30, domain.RecommendReview},
		{"approve band", 50, 0.8, 30, domain.RecommendApprove},
		{"feature band", 75, 0.8, 30, domain.RecommendFeature},
		{"floor above review band", 55, 1, 60, domain.RecommendReject},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Recommend(tc.score, tc.confidence, tc.floor))
		})
	}
}

func TestRejectOnlyBelowFloorOrConfidence(t *testing.T) {
	t.Parallel()

	for score := 0.0; score <= 100; score += 2.5 {
		for _, conf := range []float64{0, 0.2, 0.4, 0.6, 1} {
			for _, floor := range []float64{0, 30, 60} {
				rec := Recommend(score, conf, floor)
				shouldReject := score < floor || conf < MinConfidence
				assert.Equal(t, shouldReject, rec == domain.RecommendReject, "score=%v conf=%v floor=%v", score, conf, floor)
			}
		}
	}
}

func TestOracleBoostIsBoundedAndOptional(t *testing.T) {
	t.Parallel()

	item := strongProject()
	item.Tags = nil
	item.Description = strings.Repeat("plain words only here ", 20)
	item.Title = "Untitled"

	base := newTestScorer(nil).Score(context.Background(), item, 30)
	require.GreaterOrEqual(t, base.Score, float64(OracleMinScore))

	oracle := &fakeOracle{rating: &domain.OracleScore{Overall: 0.5}}
	boosted := newTestScorer(oracle).Score(context.Background(), item, 30)
	assert.Equal(t, base.Score+10, boosted.Score)
	assert.Equal(t, 10.0, boosted.OracleBoost)

	overshoot := &fakeOracle{rating: &domain.OracleScore{Overall: 7}}
	capped := newTestScorer(overshoot).Score(context.Background(), item, 30)
	assert.LessOrEqual(t, capped.OracleBoost, float64(MaxOracleBoost))
	assert.LessOrEqual(t, capped.Score, 100.0)

	failing := &fakeOracle{err: errors.New("quota exceeded")}
	fallback := newTestScorer(failing).Score(context.Background(), item, 30)
	assert.Equal(t, base.Score, fallback.Score)

	silent := &fakeOracle{}
	none := newTestScorer(silent).Score(context.Background(), item, 30)
	assert.Equal(t, base.Score, none.Score)
	assert.Equal(t, int32(1), silent.calls.Load())
}

func TestOracleSkippedForLowScores(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{rating: &domain.OracleScore{Overall: 1}}
	scored := newTestScorer(oracle).Score(context.Background(), domain.ContentItem{Title: "Test", Description: "Short desc"}, 30)

	assert.Equal(t, int32(0), oracle.calls.Load())
	assert.Zero(t, scored.OracleBoost)
}

func TestFreshnessSteps(t *testing.T) {
	t.Parallel()

	day := 24 * time.Hour
	assert.Equal(t, 20.0, freshnessScore(fixedNow.Add(-3*day), fixedNow))
	assert.Equal(t, 15.0, freshnessScore(fixedNow.Add(-20*day), fixedNow))
	assert.Equal(t, 10.0, freshnessScore(fixedNow.Add(-60*day), fixedNow))
	assert.Equal(t, 5.0, freshnessScore(fixedNow.Add(-150*day), fixedNow))
	assert.Equal(t, 2.0, freshnessScore(fixedNow.Add(-300*day), fixedNow))
	assert.Equal(t, 0.0, freshnessScore(fixedNow.Add(-400*day), fixedNow))
	assert.Equal(t, 0.0, freshnessScore(time.Time{}, fixedNow))
	assert.Equal(t, 20.0, freshnessScore(fixedNow.Add(2*day), fixedNow))
}

func TestRelevanceMatchesWholeWords(t *testing.T) {
	t.Parallel()

	s := newTestScorer(nil)
	assert.Zero(t, s.relevanceScore(domain.ContentItem{Title: "Maintain the daily rain gauge"}))
	assert.Equal(t, 15.0, s.relevanceScore(domain.ContentItem{Title: "Open-source AI", Tags: []string{"Grant"}}))
}
