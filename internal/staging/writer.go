// Package staging persists accepted items into the review queue.
package staging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"ContentCurator/internal/dedup"
	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

// MinDescription is the shortest description the queue accepts.
const MinDescription = 20

// StageResult reports what happened to a staged batch.
type StageResult struct {
	Inserted      map[domain.Category]int `json:"inserted"`
	AlreadyQueued int                     `json:"already_queued"`
	Rejected      int                     `json:"rejected"`
	Errors        []string                `json:"errors,omitempty"`
}

// Total sums inserted records across categories.
func (r StageResult) Total() int {
	total := 0
	for _, n := range r.Inserted {
		total += n
	}
	return total
}

type candidate struct {
	Title       string `validate:"required"`
	URL         string `validate:"required,url"`
	Description string `validate:"min=20"`
	Category    string `validate:"oneof=project funding resource"`
}

// Writer applies the final gate and inserts pending records.
type Writer struct {
	store    ports.QueueStore
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

// Option customises a Writer.
type Option func(*Writer)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) { w.now = now }
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(gen func() string) Option {
	return func(w *Writer) { w.newID = gen }
}

// NewWriter constructs a staging writer over the queue store.
func NewWriter(store ports.QueueStore, logger *slog.Logger, opts ...Option) *Writer {
	w := &Writer{
		store:    store,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Stage writes each item independently. A unique conflict counts as already queued and
// other storage failures are collected while the remaining items continue.
func (w *Writer) Stage(ctx context.Context, items []domain.ScoredItem, scoreThreshold float64) StageResult {
	res := StageResult{Inserted: make(map[domain.Category]int)}

	for _, it := range items {
		if err := w.gate(it, scoreThreshold); err != nil {
			res.Rejected++
			w.logger.Debug("staging gate dropped item", "title", it.Item.Title, "url", it.Item.URL, "error", err)
			continue
		}

		rec := w.record(it)
		err := w.store.InsertQueue(ctx, rec)
		switch {
		case err == nil:
			res.Inserted[rec.Category]++
		case errors.Is(err, domain.ErrConflict):
			res.AlreadyQueued++
		default:
			res.Errors = append(res.Errors, fmt.Sprintf("stage %q: %v", it.Item.URL, err))
			w.logger.Error("stage item", "url", it.Item.URL, "error", err)
		}
	}

	return res
}

func (w *Writer) gate(it domain.ScoredItem, threshold float64) error {
	c := candidate{
		Title:       strings.TrimSpace(it.Item.Title),
		URL:         strings.TrimSpace(it.Item.URL),
		Description: strings.TrimSpace(it.Item.Description),
		Category:    string(it.Item.Category()),
	}
	if err := w.validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if it.Score < threshold {
		return fmt.Errorf("%w: score %.2f below threshold %.2f", domain.ErrValidation, it.Score, threshold)
	}
	return nil
}

func (w *Writer) record(it domain.ScoredItem) domain.QueueRecord {
	id := dedup.IdentityOf(it.Item)
	rec := domain.QueueRecord{
		ID:             w.newID(),
		Category:       it.Item.Category(),
		Title:          it.Item.Title,
		Description:    it.Item.Description,
		URL:            it.Item.URL,
		Source:         it.Item.Source,
		Tags:           it.Item.Tags,
		Details:        it.Item.Details,
		URLKey:         id.URLKey,
		Fingerprint:    id.Fingerprint,
		Score:          it.Score,
		Confidence:     it.Confidence,
		Recommendation: it.Recommendation,
		Status:         domain.StatusPendingReview,
		CreatedAt:      w.now(),
	}
	if !it.Item.PublishedAt.IsZero() {
		published := it.Item.PublishedAt
		rec.PublishedAt = &published
	}
	return rec
}
