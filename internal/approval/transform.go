package approval

import (
	"fmt"
	"time"

	"ContentCurator/internal/domain"
)

const (
	defaultCurrency     = "USD"
	defaultResourceType = "article"
)

// ToProduction maps a queue record onto its category's production shape. Fields are
// renamed and defaulted only; validation already happened at staging time.
func ToProduction(rec domain.QueueRecord, reviewer string, approvedAt time.Time) (domain.ProductionRecord, error) {
	base := domain.ProductionBase{
		QueueID:     rec.ID,
		URL:         rec.URL,
		URLKey:      rec.URLKey,
		Description: rec.Description,
		Source:      rec.Source,
		Score:       rec.Score,
		Tags:        rec.Tags,
		ApprovedBy:  reviewer,
		ApprovedAt:  approvedAt,
	}

	switch d := rec.Details.(type) {
	case domain.ProjectDetails:
		return domain.Project{
			ProductionBase: base,
			Name:           rec.Title,
			TeamSize:       d.TeamSize,
			FundingRaised:  d.FundingRaised,
			LaunchDate:     timePtr(d.LaunchDate),
			Stars:          d.Stars,
			Founder:        d.Author,
		}, nil
	case domain.FundingDetails:
		currency := d.Currency
		if currency == "" {
			currency = defaultCurrency
		}
		return domain.FundingProgram{
			ProductionBase: base,
			Name:           rec.Title,
			Organization:   d.Organization,
			AmountMin:      d.AmountMin,
			AmountMax:      d.AmountMax,
			Currency:       currency,
			Deadline:       timePtr(d.Deadline),
			IsRolling:      d.Deadline.IsZero(),
		}, nil
	case domain.ResourceDetails:
		kind := d.ResourceType
		if kind == "" {
			kind = defaultResourceType
		}
		return domain.Resource{
			ProductionBase: base,
			Title:          rec.Title,
			ResourceType:   kind,
			Author:         d.Author,
			ReadingMinutes: d.ReadingMinutes,
			PublishedAt:    rec.PublishedAt,
		}, nil
	default:
		return nil, fmt.Errorf("%w: record %s has details %T for category %q", domain.ErrUnknownCategory, rec.ID, rec.Details, rec.Category)
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
