package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentCurator/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "curator.db")
	require.NoError(t, Migrate(DriverSQLite, dsn))
	// second run is a no-op
	require.NoError(t, Migrate(DriverSQLite, dsn))

	store, err := Open(context.Background(), DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func queueRecord(id string, c domain.Category, url string, score float64) domain.QueueRecord {
	published := time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)
	var details domain.Details
	switch c {
	case domain.CategoryProject:
		details = domain.ProjectDetails{TeamSize: 4, Stars: 120, Author: "dev"}
	case domain.CategoryFunding:
		details = domain.FundingDetails{Organization: "Foundation", AmountMin: 1000, AmountMax: 5000}
	default:
		details = domain.ResourceDetails{ResourceType: "paper", Author: "A. Author"}
	}
	return domain.QueueRecord{
		ID:             id,
		Category:       c,
		Title:          "Title " + id,
		Description:    "A description long enough for the queue.",
		URL:            url,
		Source:         "feed",
		Tags:           []string{"ai", "grant"},
		PublishedAt:    &published,
		Details:        details,
		URLKey:         url,
		Fingerprint:    "fp-" + id,
		Score:          score,
		Confidence:     0.8,
		Recommendation: domain.RecommendReview,
		Status:         domain.StatusPendingReview,
		CreatedAt:      time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestUnsupportedDriver(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "mysql", "dsn")
	require.ErrorIs(t, err, domain.ErrInvalidConfig)
	require.ErrorIs(t, Migrate("mysql", "dsn"), domain.ErrInvalidConfig)
}

func TestQueueRoundTripAndConflict(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	rec := queueRecord("q1", domain.CategoryFunding, "https://example.com/grant", 70)

	require.NoError(t, store.InsertQueue(ctx, rec))

	got, err := store.GetQueue(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryFunding, got.Category)
	assert.Equal(t, rec.Tags, got.Tags)
	assert.Equal(t, rec.Details, got.Details)
	require.NotNil(t, got.PublishedAt)
	assert.True(t, rec.PublishedAt.Equal(*got.PublishedAt))
	assert.Equal(t, domain.StatusPendingReview, got.Status)

	dup := rec
	dup.ID = "q2"
	err = store.InsertQueue(ctx, dup)
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = store.GetQueue(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListQueueOrdersAcrossCategories(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.InsertQueue(ctx, queueRecord("a", domain.CategoryProject, "https://e.com/a", 40)))
	require.NoError(t, store.InsertQueue(ctx, queueRecord("b", domain.CategoryResource, "https://e.com/b", 90)))
	require.NoError(t, store.InsertQueue(ctx, queueRecord("c", domain.CategoryFunding, "https://e.com/c", 65)))

	all, err := store.ListQueue(ctx, domain.QueueFilter{Status: domain.StatusPendingReview})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{all[0].ID, all[1].ID, all[2].ID})

	high, err := store.ListQueue(ctx, domain.QueueFilter{MinScore: 60, Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, high, 1)
	assert.Equal(t, "c", high[0].ID)

	project := domain.CategoryProject
	projects, err := store.ListQueue(ctx, domain.QueueFilter{Category: &project})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "a", projects[0].ID)
}

func TestMarkReviewedOnlyFromPending(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.InsertQueue(ctx, queueRecord("r1", domain.CategoryProject, "https://e.com/r1", 50)))

	review := domain.Review{
		Status:          domain.StatusRejected,
		ReviewedBy:      "alice",
		ReviewedAt:      time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC),
		RejectionReason: "off topic",
		Notes:           "off topic",
	}
	changed, err := store.MarkReviewed(ctx, domain.CategoryProject, "r1", review)
	require.NoError(t, err)
	assert.True(t, changed)

	review.Status = domain.StatusApproved
	changed, err = store.MarkReviewed(ctx, domain.CategoryProject, "r1", review)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := store.GetQueue(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, got.Status)
	assert.Equal(t, "alice", got.ReviewedBy)
	assert.Equal(t, "off topic", got.RejectionReason)
	require.NotNil(t, got.ReviewedAt)
}

func TestProductionInsertConflictAndUpdate(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()

	deadline := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	program := domain.FundingProgram{
		ProductionBase: domain.ProductionBase{
			QueueID:    "q1",
			URL:        "https://example.com/grant",
			URLKey:     "https://example.com/grant",
			Score:      70,
			ApprovedBy: "alice",
		},
		Name:         "Builder Grant",
		Organization: "Foundation",
		AmountMin:    1000,
		AmountMax:    5000,
		Currency:     "USD",
		Deadline:     &deadline,
	}

	id, err := store.InsertProduction(ctx, program)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	_, err = store.InsertProduction(ctx, program)
	require.True(t, errors.Is(err, domain.ErrConflict), "got %v", err)

	program.Name = "Builder Grant 2027"
	updatedID, err := store.UpdateProductionByURL(ctx, program)
	require.NoError(t, err)
	assert.Equal(t, id, updatedID)

	n, err := store.ProductionCount(ctx, domain.CategoryFunding)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	missing := program
	missing.URL = "https://example.com/other"
	_, err = store.UpdateProductionByURL(ctx, missing)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestKnownIdentitiesAndPendingWithProduction(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.InsertQueue(ctx, queueRecord("p1", domain.CategoryProject, "https://e.com/p1", 60)))
	require.NoError(t, store.InsertQueue(ctx, queueRecord("p2", domain.CategoryProject, "https://e.com/p2", 60)))

	_, err := store.InsertProduction(ctx, domain.Resource{
		ProductionBase: domain.ProductionBase{URL: "https://e.com/res", URLKey: "https://e.com/res"},
		Title:          "Paper",
		ResourceType:   "paper",
	})
	require.NoError(t, err)

	known, err := store.KnownIdentities(ctx,
		[]string{"https://e.com/p1", "https://e.com/res", "https://e.com/new"},
		[]string{"fp-p2", "fp-none"})
	require.NoError(t, err)
	assert.True(t, known.URLKeys["https://e.com/p1"])
	assert.True(t, known.URLKeys["https://e.com/res"])
	assert.False(t, known.URLKeys["https://e.com/new"])
	assert.True(t, known.Fingerprints["fp-p2"])
	assert.False(t, known.Fingerprints["fp-none"])

	_, err = store.InsertProduction(ctx, domain.Project{
		ProductionBase: domain.ProductionBase{QueueID: "p1", URL: "https://e.com/p1"},
		Name:           "Title p1",
	})
	require.NoError(t, err)

	pending, err := store.PendingWithProduction(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "p1", pending[0].ID)
}
