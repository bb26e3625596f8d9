package staging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentCurator/internal/domain"
)

type memQueue struct {
	records []domain.QueueRecord
	keys    map[string]bool
	failOn  string
}

func newMemQueue() *memQueue {
	return &memQueue{keys: map[string]bool{}}
}

func (m *memQueue) InsertQueue(_ context.Context, rec domain.QueueRecord) error {
	if rec.URL == m.failOn {
		return errors.New("disk full")
	}
	key := string(rec.Category) + "|" + rec.URL + "|" + rec.Source
	if m.keys[key] {
		return domain.ErrConflict
	}
	m.keys[key] = true
	m.records = append(m.records, rec)
	return nil
}

func (m *memQueue) GetQueue(context.Context, string) (domain.QueueRecord, error) {
	return domain.QueueRecord{}, domain.ErrNotFound
}

func (m *memQueue) ListQueue(context.Context, domain.QueueFilter) ([]domain.QueueRecord, error) {
	return m.records, nil
}

func (m *memQueue) MarkReviewed(context.Context, domain.Category, string, domain.Review) (bool, error) {
	return false, nil
}

func (m *memQueue) PendingWithProduction(context.Context, int) ([]domain.QueueRecord, error) {
	return nil, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func item(title, url string, score float64, details domain.Details) domain.ScoredItem {
	return domain.ScoredItem{
		Item: domain.ContentItem{
			Title:       title,
			Description: strings.Repeat("useful text ", 4),
			URL:         url,
			Source:      "feed",
			PublishedAt: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			Details:     details,
		},
		Score:          score,
		Confidence:     0.8,
		Recommendation: domain.RecommendReview,
	}
}

func TestStageInsertsPendingRecords(t *testing.T) {
	t.Parallel()

	store := newMemQueue()
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	w := NewWriter(store, discard(), WithClock(func() time.Time { return now }), WithIDGenerator(func() string { return "id-1" }))

	res := w.Stage(context.Background(), []domain.ScoredItem{
		item("Project", "https://example.com/p", 60, domain.ProjectDetails{TeamSize: 3}),
		item("Grant", "https://example.com/g", 55, domain.FundingDetails{Organization: "Org"}),
	}, 30)

	assert.Equal(t, 2, res.Total())
	assert.Equal(t, 1, res.Inserted[domain.CategoryProject])
	assert.Equal(t, 1, res.Inserted[domain.CategoryFunding])
	require.Len(t, store.records, 2)

	rec := store.records[0]
	assert.Equal(t, "id-1", rec.ID)
	assert.Equal(t, domain.StatusPendingReview, rec.Status)
	assert.Equal(t, "https://example.com/p", rec.URLKey)
	assert.NotEmpty(t, rec.Fingerprint)
	assert.Equal(t, now, rec.CreatedAt)
	require.NotNil(t, rec.PublishedAt)
}

func TestStageGateRejectsInvalidItems(t *testing.T) {
	t.Parallel()

	store := newMemQueue()
	w := NewWriter(store, discard())

	short := item("Short", "https://example.com/s", 80, domain.ResourceDetails{})
	short.Item.Description = "too short"

	res := w.Stage(context.Background(), []domain.ScoredItem{
		item("", "https://example.com/untitled", 80, domain.ResourceDetails{}),
		item("   ", "https://example.com/blank", 80, domain.ResourceDetails{}),
		item("Bad URL", "not-a-url", 80, domain.ResourceDetails{}),
		short,
		item("Low", "https://example.com/low", 10, domain.ResourceDetails{}),
		item("No details", "https://example.com/none", 80, nil),
		item("Good", "https://example.com/good", 80, domain.ResourceDetails{}),
	}, 30)

	assert.Equal(t, 6, res.Rejected)
	assert.Equal(t, 1, res.Inserted[domain.CategoryResource])
	assert.Empty(t, res.Errors)
}

func TestStageConflictCountsAlreadyQueued(t *testing.T) {
	t.Parallel()

	store := newMemQueue()
	w := NewWriter(store, discard())
	it := item("Dup", "https://example.com/dup", 60, domain.ProjectDetails{})

	first := w.Stage(context.Background(), []domain.ScoredItem{it}, 0)
	second := w.Stage(context.Background(), []domain.ScoredItem{it}, 0)

	assert.Equal(t, 1, first.Total())
	assert.Equal(t, 0, second.Total())
	assert.Equal(t, 1, second.AlreadyQueued)
	assert.Empty(t, second.Errors)
}

func TestStageStorageFailureDoesNotStopBatch(t *testing.T) {
	t.Parallel()

	store := newMemQueue()
	store.failOn = "https://example.com/broken"
	w := NewWriter(store, discard())

	res := w.Stage(context.Background(), []domain.ScoredItem{
		item("Broken", "https://example.com/broken", 60, domain.ProjectDetails{}),
		item("Fine", "https://example.com/fine", 60, domain.ProjectDetails{}),
	}, 0)

	assert.Equal(t, 1, res.Total())
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "disk full")
}
