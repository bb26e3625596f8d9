package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

type identityRow struct {
	URLKey      string `db:"url_key"`
	Fingerprint string `db:"fingerprint"`
}

// KnownIdentities reports which of the given keys already exist in queue or production tables.
func (s *Store) KnownIdentities(ctx context.Context, urlKeys, fingerprints []string) (ports.KnownIdentities, error) {
	known := ports.KnownIdentities{URLKeys: map[string]bool{}, Fingerprints: map[string]bool{}}
	if len(urlKeys) == 0 && len(fingerprints) == 0 {
		return known, nil
	}

	for _, c := range domain.Categories() {
		qt, _ := queueTable(c)
		query, args, err := s.sb.Select("url_key", "fingerprint").
			From(qt).
			Where(sq.Or{sq.Eq{"url_key": nonEmpty(urlKeys)}, sq.Eq{"fingerprint": nonEmpty(fingerprints)}}).
			ToSql()
		if err != nil {
			return known, fmt.Errorf("build identity query: %w", err)
		}
		var rows []identityRow
		if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
			return known, fmt.Errorf("identities %s: %w", qt, err)
		}
		for _, r := range rows {
			if r.URLKey != "" {
				known.URLKeys[r.URLKey] = true
			}
			if r.Fingerprint != "" {
				known.Fingerprints[r.Fingerprint] = true
			}
		}

		pt, _ := productionTable(c)
		query, args, err = s.sb.Select("url_key").From(pt).Where(sq.Eq{"url_key": nonEmpty(urlKeys)}).ToSql()
		if err != nil {
			return known, fmt.Errorf("build identity query: %w", err)
		}
		var keys []string
		if err := s.db.SelectContext(ctx, &keys, query, args...); err != nil {
			return known, fmt.Errorf("identities %s: %w", pt, err)
		}
		for _, k := range keys {
			if k != "" {
				known.URLKeys[k] = true
			}
		}
	}
	return known, nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
