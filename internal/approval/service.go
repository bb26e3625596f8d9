// Package approval moves queue records into production on reviewer or policy decision.
package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

const (
	DefaultReviewer   = "admin"
	AutoReviewer      = "auto-approval"
	ReconcileReviewer = "reconcile"
	DefaultPageSize   = 100
)

// Action is a reviewer decision.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// ParseAction accepts approve or reject in any case.
func ParseAction(value string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(value))); a {
	case ActionApprove, ActionReject:
		return a, nil
	default:
		return "", fmt.Errorf("%w: unknown action %q", domain.ErrValidation, value)
	}
}

// Response is the structured outcome of one review operation.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`

	// Err keeps the underlying error for callers that map failures onto status codes.
	Err error `json:"-"`
}

// ItemResult pairs a queue id with its response.
type ItemResult struct {
	ID       string   `json:"id"`
	Response Response `json:"response"`
}

// BulkResult aggregates per-item responses.
type BulkResult struct {
	Successful int          `json:"successful"`
	Failed     int          `json:"failed"`
	Results    []ItemResult `json:"results"`
}

// Approved describes where an approval landed.
type Approved struct {
	QueueID      string              `json:"queue_id"`
	ProductionID string              `json:"production_id"`
	Category     domain.Category     `json:"category"`
	Outcome      domain.WriteOutcome `json:"outcome"`
}

// Service applies review decisions.
type Service struct {
	queue      ports.QueueStore
	production ports.ProductionStore
	logger     *slog.Logger
	now        func() time.Time
	pageSize   int
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the review timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPageSize bounds auto-approval and reconciliation sweeps.
func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// NewService wires the approval service.
func NewService(queue ports.QueueStore, production ports.ProductionStore, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		queue:      queue,
		production: production,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		pageSize:   DefaultPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessApproval dispatches on the action.
func (s *Service) ProcessApproval(ctx context.Context, id string, action Action, reviewer, notes string) Response {
	switch action {
	case ActionApprove:
		return s.Approve(ctx, id, reviewer, notes)
	case ActionReject:
		return s.Reject(ctx, id, reviewer, notes)
	default:
		return failure(fmt.Sprintf("unsupported action %q", action), domain.ErrValidation)
	}
}

// Approve promotes the record into production. A URL conflict updates the existing
// production row; an already approved record only refreshes production.
func (s *Service) Approve(ctx context.Context, id, reviewer, notes string) Response {
	reviewer = reviewerOrDefault(reviewer)

	rec, err := s.queue.GetQueue(ctx, id)
	if err != nil {
		return lookupFailure(id, err)
	}
	if rec.Status == domain.StatusRejected {
		return failure(fmt.Sprintf("queue record %s is already rejected", id), domain.ErrInvalidTransition)
	}

	now := s.now()
	prod, err := ToProduction(rec, reviewer, now)
	if err != nil {
		return failure("cannot transform queue record", err)
	}

	outcome := domain.OutcomeInserted
	prodID, err := s.production.InsertProduction(ctx, prod)
	if errors.Is(err, domain.ErrConflict) {
		outcome = domain.OutcomeUpdated
		prodID, err = s.production.UpdateProductionByURL(ctx, prod)
	}
	if err != nil {
		s.logger.Error("write production record", "queue_id", id, "category", rec.Category, "error", err)
		return failure("failed to write production record", err)
	}

	data := Approved{QueueID: id, ProductionID: prodID, Category: rec.Category, Outcome: outcome}

	if rec.Status == domain.StatusApproved {
		return Response{Success: true, Message: "production record refreshed; queue record already approved", Data: data}
	}

	changed, err := s.queue.MarkReviewed(ctx, rec.Category, id, domain.Review{
		Status:     domain.StatusApproved,
		ReviewedBy: reviewer,
		ReviewedAt: now,
		Notes:      notes,
	})
	if err != nil {
		// production is written; the reconcile sweep repairs the queue status
		s.logger.Error("mark queue record approved", "queue_id", id, "production_id", prodID, "error", err)
		return failure("production record written but queue status update failed", err)
	}
	if !changed {
		current, err := s.queue.GetQueue(ctx, id)
		if err == nil && current.Status == domain.StatusApproved {
			return Response{Success: true, Message: "queue record approved concurrently", Data: data}
		}
		s.logger.Error("production record orphaned: queue record reviewed during approval",
			"queue_id", id, "production_id", prodID, "status", current.Status)
		return failure(fmt.Sprintf("queue record %s was reviewed concurrently", id), domain.ErrInvalidTransition)
	}

	s.logger.Info("approved", "queue_id", id, "category", rec.Category, "outcome", outcome, "reviewer", reviewer)
	return Response{Success: true, Message: fmt.Sprintf("%s record %s", rec.Category, outcome), Data: data}
}

// Reject marks a pending record rejected. Rejecting twice is a no-op success.
func (s *Service) Reject(ctx context.Context, id, reviewer, notes string) Response {
	reviewer = reviewerOrDefault(reviewer)

	rec, err := s.queue.GetQueue(ctx, id)
	if err != nil {
		return lookupFailure(id, err)
	}
	switch rec.Status {
	case domain.StatusRejected:
		return Response{Success: true, Message: "queue record already rejected", Data: map[string]string{"queue_id": id}}
	case domain.StatusApproved:
		return failure(fmt.Sprintf("queue record %s is already approved", id), domain.ErrInvalidTransition)
	}

	changed, err := s.queue.MarkReviewed(ctx, rec.Category, id, domain.Review{
		Status:          domain.StatusRejected,
		ReviewedBy:      reviewer,
		ReviewedAt:      s.now(),
		RejectionReason: notes,
		Notes:           notes,
	})
	if err != nil {
		return failure("failed to reject queue record", err)
	}
	if !changed {
		current, err := s.queue.GetQueue(ctx, id)
		if err == nil && current.Status == domain.StatusRejected {
			return Response{Success: true, Message: "queue record already rejected", Data: map[string]string{"queue_id": id}}
		}
		return failure(fmt.Sprintf("queue record %s was reviewed concurrently", id), domain.ErrInvalidTransition)
	}

	s.logger.Info("rejected", "queue_id", id, "category", rec.Category, "reviewer", reviewer)
	return Response{Success: true, Message: "queue record rejected", Data: map[string]string{"queue_id": id}}
}

// BulkApprove approves each id independently.
func (s *Service) BulkApprove(ctx context.Context, ids []string, reviewer string) BulkResult {
	res := BulkResult{Results: make([]ItemResult, 0, len(ids))}
	for _, id := range ids {
		resp := s.Approve(ctx, id, reviewer, "")
		if resp.Success {
			res.Successful++
		} else {
			res.Failed++
		}
		res.Results = append(res.Results, ItemResult{ID: id, Response: resp})
	}
	return res
}

// AutoApprove approves one page of pending records scoring at least minScore, highest first.
func (s *Service) AutoApprove(ctx context.Context, minScore float64) (BulkResult, error) {
	recs, err := s.queue.ListQueue(ctx, domain.QueueFilter{
		Status:   domain.StatusPendingReview,
		MinScore: minScore,
		Limit:    s.pageSize,
	})
	if err != nil {
		return BulkResult{}, fmt.Errorf("list pending: %w", err)
	}

	ids := make([]string, 0, len(recs))
	for _, rec := range recs {
		if rec.Score >= minScore {
			ids = append(ids, rec.ID)
		}
	}
	res := s.BulkApprove(ctx, ids, AutoReviewer)
	s.logger.Info("auto-approval finished", "min_score", minScore, "successful", res.Successful, "failed", res.Failed)
	return res, nil
}

// Reconcile marks approved any pending record that a production row already references.
func (s *Service) Reconcile(ctx context.Context) (BulkResult, error) {
	recs, err := s.queue.PendingWithProduction(ctx, s.pageSize)
	if err != nil {
		return BulkResult{}, fmt.Errorf("list unreconciled: %w", err)
	}

	res := BulkResult{Results: make([]ItemResult, 0, len(recs))}
	for _, rec := range recs {
		_, err := s.queue.MarkReviewed(ctx, rec.Category, rec.ID, domain.Review{
			Status:     domain.StatusApproved,
			ReviewedBy: ReconcileReviewer,
			ReviewedAt: s.now(),
		})
		resp := Response{Success: true, Message: "queue record reconciled"}
		if err != nil {
			resp = failure("failed to reconcile queue record", err)
			res.Failed++
		} else {
			res.Successful++
		}
		res.Results = append(res.Results, ItemResult{ID: rec.ID, Response: resp})
	}
	if len(recs) > 0 {
		s.logger.Info("reconciled queue records", "successful", res.Successful, "failed", res.Failed)
	}
	return res, nil
}

func reviewerOrDefault(reviewer string) string {
	if strings.TrimSpace(reviewer) == "" {
		return DefaultReviewer
	}
	return reviewer
}

func lookupFailure(id string, err error) Response {
	if errors.Is(err, domain.ErrNotFound) {
		return failure(fmt.Sprintf("queue record %s not found", id), err)
	}
	return failure("failed to load queue record", err)
}

func failure(message string, err error) Response {
	return Response{Success: false, Message: message, Error: err.Error(), Err: err}
}
