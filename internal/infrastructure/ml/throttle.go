package ml

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

// Throttled limits the request rate of any oracle.
type Throttled struct {
	next    ports.Oracle
	limiter *rate.Limiter
}

var _ ports.Oracle = (*Throttled)(nil)

// NewThrottled wraps next; a non-positive rate disables limiting.
func NewThrottled(next ports.Oracle, perSecond float64, burst int) *Throttled {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst < 1 {
		burst = 1
	}
	return &Throttled{next: next, limiter: rate.NewLimiter(limit, burst)}
}

// ScoreContent waits for a token, then delegates.
func (t *Throttled) ScoreContent(ctx context.Context, item domain.ContentItem) (*domain.OracleScore, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("oracle rate limit: %w", err)
	}
	return t.next.ScoreContent(ctx, item)
}
