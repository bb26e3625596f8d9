package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	sq "github.com/Masterminds/squirrel"

	"ContentCurator/internal/domain"
)

var queueColumns = []string{
	"id", "title", "description", "url", "source", "tags", "published_at", "details",
	"url_key", "fingerprint", "score", "confidence", "recommendation", "status",
	"reviewed_by", "reviewed_at", "rejection_reason", "review_notes", "created_at",
}

type queueRow struct {
	ID              string     `db:"id"`
	Title           string     `db:"title"`
	Description     string     `db:"description"`
	URL             string     `db:"url"`
	Source          string     `db:"source"`
	Tags            string     `db:"tags"`
	PublishedAt     *time.Time `db:"published_at"`
	Details         string     `db:"details"`
	URLKey          string     `db:"url_key"`
	Fingerprint     string     `db:"fingerprint"`
	Score           float64    `db:"score"`
	Confidence      float64    `db:"confidence"`
	Recommendation  string     `db:"recommendation"`
	Status          string     `db:"status"`
	ReviewedBy      string     `db:"reviewed_by"`
	ReviewedAt      *time.Time `db:"reviewed_at"`
	RejectionReason string     `db:"rejection_reason"`
	ReviewNotes     string     `db:"review_notes"`
	CreatedAt       time.Time  `db:"created_at"`
}

func (r queueRow) toRecord(c domain.Category) (domain.QueueRecord, error) {
	details, err := domain.DecodeDetails(c, []byte(r.Details))
	if err != nil {
		return domain.QueueRecord{}, err
	}
	tags, err := decodeTags(r.Tags)
	if err != nil {
		return domain.QueueRecord{}, err
	}
	return domain.QueueRecord{
		ID:              r.ID,
		Category:        c,
		Title:           r.Title,
		Description:     r.Description,
		URL:             r.URL,
		Source:          r.Source,
		Tags:            tags,
		PublishedAt:     utcPtr(r.PublishedAt),
		Details:         details,
		URLKey:          r.URLKey,
		Fingerprint:     r.Fingerprint,
		Score:           r.Score,
		Confidence:      r.Confidence,
		Recommendation:  domain.Recommendation(r.Recommendation),
		Status:          domain.Status(r.Status),
		ReviewedBy:      r.ReviewedBy,
		ReviewedAt:      utcPtr(r.ReviewedAt),
		RejectionReason: r.RejectionReason,
		ReviewNotes:     r.ReviewNotes,
		CreatedAt:       r.CreatedAt.UTC(),
	}, nil
}

// InsertQueue stores a new pending record in its category table.
func (s *Store) InsertQueue(ctx context.Context, rec domain.QueueRecord) error {
	table, err := queueTable(rec.Category)
	if err != nil {
		return err
	}
	details, err := domain.EncodeDetails(rec.Details)
	if err != nil {
		return fmt.Errorf("encode details: %w", err)
	}
	tags, err := encodeTags(rec.Tags)
	if err != nil {
		return err
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	status := rec.Status
	if status == "" {
		status = domain.StatusPendingReview
	}

	query, args, err := s.sb.Insert(table).
		Columns(queueColumns...).
		Values(
			rec.ID, rec.Title, rec.Description, rec.URL, rec.Source, tags, utcPtr(rec.PublishedAt), string(details),
			rec.URLKey, rec.Fingerprint, rec.Score, rec.Confidence, string(rec.Recommendation), string(status),
			rec.ReviewedBy, utcPtr(rec.ReviewedAt), rec.RejectionReason, rec.ReviewNotes, created.UTC(),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, classify(err))
	}
	return nil
}

// GetQueue looks the id up in every queue table.
func (s *Store) GetQueue(ctx context.Context, id string) (domain.QueueRecord, error) {
	for _, c := range domain.Categories() {
		table, _ := queueTable(c)
		query, args, err := s.sb.Select(queueColumns...).From(table).Where(sq.Eq{"id": id}).ToSql()
		if err != nil {
			return domain.QueueRecord{}, fmt.Errorf("build select: %w", err)
		}

		var row queueRow
		err = s.db.GetContext(ctx, &row, query, args...)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return domain.QueueRecord{}, fmt.Errorf("get %s: %w", table, err)
		}
		return row.toRecord(c)
	}
	return domain.QueueRecord{}, fmt.Errorf("queue record %s: %w", id, domain.ErrNotFound)
}

// ListQueue returns records ordered by score descending, then creation time.
func (s *Store) ListQueue(ctx context.Context, filter domain.QueueFilter) ([]domain.QueueRecord, error) {
	categories := domain.Categories()
	if filter.Category != nil {
		categories = []domain.Category{*filter.Category}
	}
	window := 0
	if filter.Limit > 0 {
		window = filter.Offset + filter.Limit
	}

	var out []domain.QueueRecord
	for _, c := range categories {
		table, err := queueTable(c)
		if err != nil {
			return nil, err
		}
		qb := s.sb.Select(queueColumns...).From(table).OrderBy("score DESC", "created_at ASC", "id ASC")
		if filter.Status != "" {
			qb = qb.Where(sq.Eq{"status": string(filter.Status)})
		}
		if filter.MinScore > 0 {
			qb = qb.Where(sq.GtOrEq{"score": filter.MinScore})
		}
		if window > 0 {
			qb = qb.Limit(uint64(window))
		}

		recs, err := s.selectQueue(ctx, qb, c)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// MarkReviewed applies the review only to a pending record.
func (s *Store) MarkReviewed(ctx context.Context, category domain.Category, id string, review domain.Review) (bool, error) {
	table, err := queueTable(category)
	if err != nil {
		return false, err
	}

	query, args, err := s.sb.Update(table).
		Set("status", string(review.Status)).
		Set("reviewed_by", review.ReviewedBy).
		Set("reviewed_at", review.ReviewedAt.UTC()).
		Set("rejection_reason", review.RejectionReason).
		Set("review_notes", review.Notes).
		Where(sq.Eq{"id": id, "status": string(domain.StatusPendingReview)}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build update: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("review %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// PendingWithProduction lists pending records that a production row already references.
func (s *Store) PendingWithProduction(ctx context.Context, limit int) ([]domain.QueueRecord, error) {
	cols := make([]string, len(queueColumns))
	for i, c := range queueColumns {
		cols[i] = "q." + c
	}

	var out []domain.QueueRecord
	for _, c := range domain.Categories() {
		qt, _ := queueTable(c)
		pt, _ := productionTable(c)
		qb := s.sb.Select(cols...).
			From(qt + " q").
			Join(pt + " p ON p.queue_id = q.id").
			Where(sq.Eq{"q.status": string(domain.StatusPendingReview)}).
			OrderBy("q.created_at ASC")
		if limit > 0 {
			qb = qb.Limit(uint64(limit))
		}

		recs, err := s.selectQueue(ctx, qb, c)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) selectQueue(ctx context.Context, qb sq.SelectBuilder, c domain.Category) ([]domain.QueueRecord, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var rows []queueRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list %s queue: %w", c, err)
	}

	out := make([]domain.QueueRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord(c)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", row.ID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(raw), nil
}

func decodeTags(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return tags, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
