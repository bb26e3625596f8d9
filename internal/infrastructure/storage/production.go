package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"ContentCurator/internal/domain"
)

// InsertProduction adds an approved record to its category table and returns its id.
func (s *Store) InsertProduction(ctx context.Context, rec domain.ProductionRecord) (string, error) {
	table, err := productionTable(rec.Category())
	if err != nil {
		return "", err
	}
	base := domain.Base(rec)
	id := base.ID
	if id == "" {
		id = uuid.NewString()
	}

	cols, err := s.productionValues(rec)
	if err != nil {
		return "", err
	}
	cols["id"] = id

	query, args, err := s.sb.Insert(table).SetMap(cols).ToSql()
	if err != nil {
		return "", fmt.Errorf("build insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("insert %s: %w", table, classify(err))
	}
	return id, nil
}

// UpdateProductionByURL refreshes the row sharing the record's URL and returns its id.
func (s *Store) UpdateProductionByURL(ctx context.Context, rec domain.ProductionRecord) (string, error) {
	table, err := productionTable(rec.Category())
	if err != nil {
		return "", err
	}

	cols, err := s.productionValues(rec)
	if err != nil {
		return "", err
	}
	delete(cols, "url")

	query, args, err := s.sb.Update(table).SetMap(cols).Where(sq.Eq{"url": rec.NaturalKey()}).ToSql()
	if err != nil {
		return "", fmt.Errorf("build update: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return "", fmt.Errorf("update %s: %w", table, classify(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return "", fmt.Errorf("%s url %q: %w", table, rec.NaturalKey(), domain.ErrNotFound)
	}

	query, args, err = s.sb.Select("id").From(table).Where(sq.Eq{"url": rec.NaturalKey()}).ToSql()
	if err != nil {
		return "", fmt.Errorf("build select: %w", err)
	}
	var id string
	if err := s.db.GetContext(ctx, &id, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s url %q: %w", table, rec.NaturalKey(), domain.ErrNotFound)
		}
		return "", fmt.Errorf("select %s id: %w", table, err)
	}
	return id, nil
}

// ProductionCount reports the number of rows in a category table.
func (s *Store) ProductionCount(ctx context.Context, c domain.Category) (int, error) {
	table, err := productionTable(c)
	if err != nil {
		return 0, err
	}
	query, args, err := s.sb.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var n int
	if err := s.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (s *Store) productionValues(rec domain.ProductionRecord) (map[string]any, error) {
	base := domain.Base(rec)
	tags, err := encodeTags(base.Tags)
	if err != nil {
		return nil, err
	}
	approved := base.ApprovedAt
	if approved.IsZero() {
		approved = s.now()
	}

	cols := map[string]any{
		"queue_id":    base.QueueID,
		"url":         base.URL,
		"url_key":     base.URLKey,
		"description": base.Description,
		"source":      base.Source,
		"score":       base.Score,
		"tags":        tags,
		"approved_by": base.ApprovedBy,
		"approved_at": approved.UTC(),
		"updated_at":  s.now(),
	}

	switch r := rec.(type) {
	case domain.Project:
		cols["name"] = r.Name
		cols["team_size"] = r.TeamSize
		cols["funding_raised"] = r.FundingRaised
		cols["launch_date"] = utcPtr(r.LaunchDate)
		cols["stars"] = r.Stars
		cols["founder"] = r.Founder
	case domain.FundingProgram:
		cols["name"] = r.Name
		cols["organization"] = r.Organization
		cols["amount_min"] = r.AmountMin
		cols["amount_max"] = r.AmountMax
		cols["currency"] = r.Currency
		cols["deadline"] = utcPtr(r.Deadline)
		cols["is_rolling"] = boolInt(r.IsRolling)
	case domain.Resource:
		cols["title"] = r.Title
		cols["resource_type"] = r.ResourceType
		cols["author"] = r.Author
		cols["reading_minutes"] = r.ReadingMinutes
		cols["published_at"] = utcPtr(r.PublishedAt)
	default:
		return nil, fmt.Errorf("%w: production record %T", domain.ErrUnknownCategory, rec)
	}
	return cols, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

