package domain

import "time"

// ProductionRecord is a permanent, approved record. Each category has its own table.
type ProductionRecord interface {
	Category() Category
	NaturalKey() string
}

// ProductionBase holds the columns shared by every production table.
type ProductionBase struct {
	ID          string    `json:"id"`
	QueueID     string    `json:"queue_id"`
	URL         string    `json:"url"`
	URLKey      string    `json:"url_key"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
	Score       float64   `json:"score"`
	Tags        []string  `json:"tags,omitempty"`
	ApprovedBy  string    `json:"approved_by"`
	ApprovedAt  time.Time `json:"approved_at"`
}

// Project is the production shape of an approved project.
type Project struct {
	ProductionBase
	Name          string     `json:"name"`
	TeamSize      int        `json:"team_size"`
	FundingRaised float64    `json:"funding_raised"`
	LaunchDate    *time.Time `json:"launch_date,omitempty"`
	Stars         int        `json:"stars"`
	Founder       string     `json:"founder,omitempty"`
}

// FundingProgram is the production shape of an approved funding opportunity.
type FundingProgram struct {
	ProductionBase
	Name         string     `json:"name"`
	Organization string     `json:"organization"`
	AmountMin    float64    `json:"amount_min"`
	AmountMax    float64    `json:"amount_max"`
	Currency     string     `json:"currency"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	IsRolling    bool       `json:"is_rolling"`
}

// Resource is the production shape of an approved learning resource.
type Resource struct {
	ProductionBase
	Title          string     `json:"title"`
	ResourceType   string     `json:"resource_type"`
	Author         string     `json:"author,omitempty"`
	ReadingMinutes int        `json:"reading_minutes"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
}

func (Project) Category() Category        { return CategoryProject }
func (FundingProgram) Category() Category { return CategoryFunding }
func (Resource) Category() Category       { return CategoryResource }

func (p Project) NaturalKey() string        { return p.URL }
func (f FundingProgram) NaturalKey() string { return f.URL }
func (r Resource) NaturalKey() string       { return r.URL }

// Base exposes the shared columns of any production variant.
func Base(rec ProductionRecord) ProductionBase {
	switch r := rec.(type) {
	case Project:
		return r.ProductionBase
	case FundingProgram:
		return r.ProductionBase
	case Resource:
		return r.ProductionBase
	default:
		return ProductionBase{}
	}
}

// WriteOutcome says whether a production write inserted or updated a row.
type WriteOutcome string

const (
	OutcomeInserted WriteOutcome = "inserted"
	OutcomeUpdated  WriteOutcome = "updated"
)
