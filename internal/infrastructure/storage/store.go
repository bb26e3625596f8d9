// Package storage implements the queue, production and identity ports on top of
// database/sql. Postgres (lib/pq) and SQLite (modernc.org/sqlite) share one schema.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	pgUniqueViolation = "23505"
)

// Store persists queue and production records.
type Store struct {
	db     *sqlx.DB
	sb     sq.StatementBuilderType
	driver string
	now    func() time.Time
}

var (
	_ ports.QueueStore      = (*Store)(nil)
	_ ports.ProductionStore = (*Store)(nil)
	_ ports.IdentityIndex   = (*Store)(nil)
)

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if err := checkDriver(driver); err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return New(db, driver), nil
}

// New wraps an existing connection pool.
func New(db *sqlx.DB, driver string) *Store {
	format := sq.PlaceholderFormat(sq.Question)
	if driver == DriverPostgres {
		format = sq.Dollar
	}
	return &Store{
		db:     db,
		sb:     sq.StatementBuilder.PlaceholderFormat(format),
		driver: driver,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Close releases the pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func checkDriver(driver string) error {
	switch driver {
	case DriverPostgres, DriverSQLite:
		return nil
	default:
		return fmt.Errorf("%w: unsupported database driver %q", domain.ErrInvalidConfig, driver)
	}
}

// classify maps driver unique violations onto domain.ErrConflict.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
		}
	}
	return false
}

func queueTable(c domain.Category) (string, error) {
	switch c {
	case domain.CategoryProject:
		return "project_queue", nil
	case domain.CategoryFunding:
		return "funding_queue", nil
	case domain.CategoryResource:
		return "resource_queue", nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownCategory, c)
	}
}

func productionTable(c domain.Category) (string, error) {
	switch c {
	case domain.CategoryProject:
		return "projects", nil
	case domain.CategoryFunding:
		return "funding_programs", nil
	case domain.CategoryResource:
		return "resources", nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownCategory, c)
	}
}
