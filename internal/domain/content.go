package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category partitions content into its queue and production tables.
type Category string

const (
	CategoryProject  Category = "project"
	CategoryFunding  Category = "funding"
	CategoryResource Category = "resource"
)

// Categories lists every supported category in a stable order.
func Categories() []Category {
	return []Category{CategoryProject, CategoryFunding, CategoryResource}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryProject, CategoryFunding, CategoryResource:
		return true
	default:
		return false
	}
}

// ParseCategory accepts the category name in any letter case.
func ParseCategory(value string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(value)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, value)
	}
	return c, nil
}

// ContentItem is a normalized unit produced by a connector.
type ContentItem struct {
	Title       string
	Description string
	URL         string
	Source      string
	PublishedAt time.Time
	Tags        []string
	Details     Details
}

// Category is derived from the details variant; items without details have none.
func (i ContentItem) Category() Category {
	if i.Details == nil {
		return ""
	}
	return i.Details.Category()
}

// Details carries the category-specific attributes of an item.
// The set of implementations is closed to this package.
type Details interface {
	Category() Category
	isDetails()
}

// ProjectDetails describes a project or startup.
type ProjectDetails struct {
	TeamSize      int       `json:"team_size,omitempty"`
	FundingRaised float64   `json:"funding_raised,omitempty"`
	LaunchDate    time.Time `json:"launch_date,omitempty"`
	Stars         int       `json:"stars,omitempty"`
	Author        string    `json:"author,omitempty"`
	Language      string    `json:"language,omitempty"`
}

// FundingDetails describes a grant, accelerator or other funding program.
type FundingDetails struct {
	Organization string    `json:"organization,omitempty"`
	AmountMin    float64   `json:"amount_min,omitempty"`
	AmountMax    float64   `json:"amount_max,omitempty"`
	Currency     string    `json:"currency,omitempty"`
	Deadline     time.Time `json:"deadline,omitempty"`
	Eligibility  []string  `json:"eligibility,omitempty"`
}

// ResourceDetails describes an article, paper, tutorial or tool.
type ResourceDetails struct {
	ResourceType   string `json:"resource_type,omitempty"`
	Author         string `json:"author,omitempty"`
	ReadingMinutes int    `json:"reading_minutes,omitempty"`
}

func (ProjectDetails) Category() Category  { return CategoryProject }
func (FundingDetails) Category() Category  { return CategoryFunding }
func (ResourceDetails) Category() Category { return CategoryResource }

func (ProjectDetails) isDetails()  {}
func (FundingDetails) isDetails()  {}
func (ResourceDetails) isDetails() {}

// ResourceTypes enumerates resource kinds accepted by the eligibility rules.
var ResourceTypes = []string{"article", "paper", "tutorial", "tool", "course", "video", "dataset"}
