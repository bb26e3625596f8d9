// Package eligibility applies category-specific soft validation. An ineligible item is a
// warning: its score is downgraded but it stays in the run.
package eligibility

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"ContentCurator/internal/domain"
)

// MinScore is the lowest score a warned item can be downgraded to.
const MinScore = 1

// Rules holds the numeric limits of the category checks.
type Rules struct {
	MinDescription   int
	MaxTeamSize      int
	LaunchWindow     time.Duration
	FutureTolerance  time.Duration
	PenaltyPerReason float64
}

// DefaultRules returns the limits used in production runs.
func DefaultRules() Rules {
	return Rules{
		MinDescription:   50,
		MaxTeamSize:      50,
		LaunchWindow:     5 * 365 * 24 * time.Hour,
		FutureTolerance:  30 * 24 * time.Hour,
		PenaltyPerReason: 5,
	}
}

// Result is the outcome of an eligibility check.
type Result struct {
	Eligible bool
	Reasons  []string
	Score    float64
}

// Filter checks items against Rules.
type Filter struct {
	rules  Rules
	now    func() time.Time
	logger *slog.Logger
}

// New builds a filter; a nil clock defaults to time.Now.
func New(rules Rules, now func() time.Time, logger *slog.Logger) *Filter {
	if now == nil {
		now = time.Now
	}
	return &Filter{rules: rules, now: now, logger: logger}
}

// Check evaluates the item against the rules of category. Ineligible items keep a score
// of at least max(floor, MinScore).
func (f *Filter) Check(item domain.ScoredItem, category domain.Category, floor float64) Result {
	reasons := f.reasons(item.Item, category)
	if len(reasons) == 0 {
		return Result{Eligible: true, Score: item.Score}
	}

	score := item.Score - f.rules.PenaltyPerReason*float64(len(reasons))
	score = math.Max(score, math.Max(floor, MinScore))
	score = math.Min(score, item.Score)
	if item.Score < MinScore {
		score = MinScore
	}

	if f.logger != nil {
		f.logger.Warn("eligibility warning",
			"url", item.Item.URL,
			"category", category,
			"reasons", strings.Join(reasons, "; "),
			"score_before", item.Score,
			"score_after", score)
	}

	return Result{Eligible: false, Reasons: reasons, Score: score}
}

func (f *Filter) reasons(item domain.ContentItem, category domain.Category) []string {
	var reasons []string
	if !category.Valid() {
		return []string{fmt.Sprintf("unknown category %q", category)}
	}
	if item.Category() != category {
		reasons = append(reasons, fmt.Sprintf("details describe %q, not %q", item.Category(), category))
	}
	if strings.TrimSpace(item.URL) == "" {
		reasons = append(reasons, "url is required")
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(item.Description)); n < f.rules.MinDescription {
		reasons = append(reasons, fmt.Sprintf("description has %d characters, need %d", n, f.rules.MinDescription))
	}

	now := f.now()
	switch d := item.Details.(type) {
	case domain.ProjectDetails:
		if d.TeamSize > f.rules.MaxTeamSize {
			reasons = append(reasons, fmt.Sprintf("team size %d exceeds %d", d.TeamSize, f.rules.MaxTeamSize))
		}
		if !d.LaunchDate.IsZero() {
			if d.LaunchDate.Before(now.Add(-f.rules.LaunchWindow)) {
				reasons = append(reasons, "launch date is outside the recency window")
			}
			if d.LaunchDate.After(now.Add(f.rules.FutureTolerance)) {
				reasons = append(reasons, "launch date is too far in the future")
			}
		}
	case domain.FundingDetails:
		if strings.TrimSpace(d.Organization) == "" {
			reasons = append(reasons, "organization is required")
		}
		if d.AmountMin > 0 && d.AmountMax > 0 && d.AmountMax < d.AmountMin {
			reasons = append(reasons, "amount max is below amount min")
		}
		if !d.Deadline.IsZero() && d.Deadline.Before(now) {
			reasons = append(reasons, "deadline has passed")
		}
	case domain.ResourceDetails:
		if d.ResourceType != "" && !slices.Contains(domain.ResourceTypes, strings.ToLower(d.ResourceType)) {
			reasons = append(reasons, fmt.Sprintf("unknown resource type %q", d.ResourceType))
		}
	}

	return reasons
}
