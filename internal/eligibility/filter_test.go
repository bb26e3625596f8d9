package eligibility

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentCurator/internal/domain"
)

var now = time.Date(2026, time.October, 17, 0, 0, 0, 0, time.UTC)

func newFilter() *Filter {
	return New(DefaultRules(), func() time.Time { return now }, nil)
}

func scored(item domain.ContentItem, score float64) domain.ScoredItem {
	return domain.ScoredItem{Item: item, Score: score}
}

var longDescription = strings.Repeat("A thoroughly described entry. ", 4)

func TestEligibleProjectKeepsScore(t *testing.T) {
	t.Parallel()

	item := domain.ContentItem{
		Title:       "Ledger",
		Description: longDescription,
		URL:         "https://ledger.dev",
		Details:     domain.ProjectDetails{TeamSize: 4, LaunchDate: now.AddDate(0, -6, 0)},
	}

	res := newFilter().Check(scored(item, 72), domain.CategoryProject, 30)

	assert.True(t, res.Eligible)
	assert.Empty(t, res.Reasons)
	assert.Equal(t, 72.0, res.Score)
}

func TestIneligibleProjectIsDowngradedNotDropped(t *testing.T) {
	t.Parallel()

	item := domain.ContentItem{
		Title:       "Megacorp",
		Description: longDescription,
		URL:         "https://mega.example",
		Details:     domain.ProjectDetails{TeamSize: 400, LaunchDate: now.AddDate(-10, 0, 0)},
	}

	res := newFilter().Check(scored(item, 80), domain.CategoryProject, 30)

	assert.False(t, res.Eligible)
	require.Len(t, res.Reasons, 2)
	assert.Equal(t, 70.0, res.Score)
}

func TestDowngradeIsFlooredAtThreshold(t *testing.T) {
	t.Parallel()

	item := domain.ContentItem{Title: "Grant", Description: "tiny", Details: domain.FundingDetails{AmountMin: 100, AmountMax: 10, Deadline: now.AddDate(0, 0, -1)}}

	res := newFilter().Check(scored(item, 35), domain.CategoryFunding, 30)

	assert.False(t, res.Eligible)
	assert.Len(t, res.Reasons, 5)
	assert.Equal(t, 30.0, res.Score)
}

func TestDowngradeNeverDropsBelowMinimum(t *testing.T) {
	t.Parallel()

	item := domain.ContentItem{Title: "Doc", Details: domain.ResourceDetails{ResourceType: "podcast"}}

	res := newFilter().Check(scored(item, 12), domain.CategoryResource, 0)

	assert.False(t, res.Eligible)
	assert.Equal(t, float64(MinScore), res.Score)
}

func TestCategoryMismatchIsReported(t *testing.T) {
	t.Parallel()

	item := domain.ContentItem{Title: "Guide", Description: longDescription, URL: "https://guide.dev", Details: domain.ResourceDetails{ResourceType: "tutorial"}}

	res := newFilter().Check(scored(item, 60), domain.CategoryProject, 30)

	assert.False(t, res.Eligible)
	assert.Contains(t, res.Reasons[0], "resource")
}
