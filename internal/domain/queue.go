package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is the review state of a queue record.
type Status string

const (
	StatusPendingReview Status = "pending_review"
	StatusApproved      Status = "approved"
	StatusRejected      Status = "rejected"
)

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransition allows only pending_review -> approved|rejected.
func (s Status) CanTransition(to Status) bool {
	return s == StatusPendingReview && to.Terminal()
}

// QueueRecord is the persisted, reviewable unit created by staging.
type QueueRecord struct {
	ID              string         `json:"id"`
	Category        Category       `json:"category"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	URL             string         `json:"url"`
	Source          string         `json:"source"`
	Tags            []string       `json:"tags,omitempty"`
	PublishedAt     *time.Time     `json:"published_at,omitempty"`
	Details         Details        `json:"details"`
	URLKey          string         `json:"url_key"`
	Fingerprint     string         `json:"fingerprint"`
	Score           float64        `json:"score"`
	Confidence      float64        `json:"confidence"`
	Recommendation  Recommendation `json:"recommendation"`
	Status          Status         `json:"status"`
	ReviewedBy      string         `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time     `json:"reviewed_at,omitempty"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	ReviewNotes     string         `json:"review_notes,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Review captures a reviewer decision applied to a pending record.
type Review struct {
	Status          Status
	ReviewedBy      string
	ReviewedAt      time.Time
	RejectionReason string
	Notes           string
}

// QueueFilter selects queue records for listing and auto-approval.
type QueueFilter struct {
	Category *Category
	Status   Status
	MinScore float64
	Limit    int
	Offset   int
}

// EncodeDetails serializes a details variant for storage.
func EncodeDetails(d Details) ([]byte, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d)
}

// DecodeDetails restores the details variant that matches the category.
func DecodeDetails(category Category, raw []byte) (Details, error) {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	switch category {
	case CategoryProject:
		var d ProjectDetails
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode project details: %w", err)
		}
		return d, nil
	case CategoryFunding:
		var d FundingDetails
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode funding details: %w", err)
		}
		return d, nil
	case CategoryResource:
		var d ResourceDetails
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode resource details: %w", err)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
}
