package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	t.Parallel()

	assert.True(t, StatusPendingReview.CanTransition(StatusApproved))
	assert.True(t, StatusPendingReview.CanTransition(StatusRejected))
	assert.False(t, StatusPendingReview.CanTransition(StatusPendingReview))
	assert.False(t, StatusApproved.CanTransition(StatusRejected))
	assert.False(t, StatusRejected.CanTransition(StatusApproved))
	assert.False(t, StatusRejected.CanTransition(StatusPendingReview))
}

func TestParseCategory(t *testing.T) {
	t.Parallel()

	c, err := ParseCategory(" Funding ")
	require.NoError(t, err)
	assert.Equal(t, CategoryFunding, c)

	_, err = ParseCategory("event")
	assert.True(t, errors.Is(err, ErrUnknownCategory))
}

func TestDecodeDetailsRestoresVariant(t *testing.T) {
	t.Parallel()

	deadline := time.Date(2027, time.March, 1, 0, 0, 0, 0, time.UTC)
	raw, err := EncodeDetails(FundingDetails{Organization: "Foundation", AmountMax: 50000, Deadline: deadline})
	require.NoError(t, err)

	d, err := DecodeDetails(CategoryFunding, raw)
	require.NoError(t, err)
	funding, ok := d.(FundingDetails)
	require.True(t, ok)
	assert.Equal(t, "Foundation", funding.Organization)
	assert.True(t, funding.Deadline.Equal(deadline))

	_, err = DecodeDetails(Category("event"), raw)
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestRunConfigValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, RunConfig{BatchSize: 1, ScoreThreshold: 0}.Validate())
	assert.NoError(t, RunConfig{BatchSize: 100, ScoreThreshold: 100}.Validate())
	assert.ErrorIs(t, RunConfig{BatchSize: 0, ScoreThreshold: 30}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, RunConfig{BatchSize: 101, ScoreThreshold: 30}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, RunConfig{BatchSize: 10, ScoreThreshold: 120}.Validate(), ErrInvalidConfig)
}

func TestContentItemCategoryFollowsDetails(t *testing.T) {
	t.Parallel()

	assert.Equal(t, CategoryProject, ContentItem{Details: ProjectDetails{}}.Category())
	assert.Equal(t, Category(""), ContentItem{}.Category())
}
