package ports

import (
	"context"
	"time"

	"ContentCurator/internal/domain"
)

// QueueStore persists staged records awaiting review.
type QueueStore interface {
	// InsertQueue returns domain.ErrConflict when (url, source) is already staged.
	InsertQueue(ctx context.Context, rec domain.QueueRecord) error
	GetQueue(ctx context.Context, id string) (domain.QueueRecord, error)
	ListQueue(ctx context.Context, filter domain.QueueFilter) ([]domain.QueueRecord, error)
	// MarkReviewed applies review only while the record is still pending; it reports
	// whether a row changed.
	MarkReviewed(ctx context.Context, category domain.Category, id string, review domain.Review) (bool, error)
	// PendingWithProduction lists pending records already referenced by a production row.
	PendingWithProduction(ctx context.Context, limit int) ([]domain.QueueRecord, error)
}

// ProductionStore persists approved records into category tables.
type ProductionStore interface {
	// InsertProduction returns domain.ErrConflict when the URL already exists.
	InsertProduction(ctx context.Context, rec domain.ProductionRecord) (string, error)
	UpdateProductionByURL(ctx context.Context, rec domain.ProductionRecord) (string, error)
}

// KnownIdentities lists identity keys that already exist in queue or production tables.
type KnownIdentities struct {
	URLKeys      map[string]bool
	Fingerprints map[string]bool
}

// IdentityIndex answers deduplication lookups against persisted content.
type IdentityIndex interface {
	KnownIdentities(ctx context.Context, urlKeys, fingerprints []string) (KnownIdentities, error)
}

// Oracle is the optional external scoring service. A nil score means no opinion.
type Oracle interface {
	ScoreContent(ctx context.Context, item domain.ContentItem) (*domain.OracleScore, error)
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
