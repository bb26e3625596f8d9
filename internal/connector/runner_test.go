package connector

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentCurator/internal/domain"
)

type stubConnector struct {
	name     string
	calls    atomic.Int32
	failN    int32
	err      error
	delay    time.Duration
	panics   bool
	items    []domain.ContentItem
	transErr error
}

func (s *stubConnector) Name() string { return s.name }

func (s *stubConnector) Fetch(ctx context.Context) (RawBatch, error) {
	n := s.calls.Add(1)
	if s.panics {
		panic("boom")
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return RawBatch{}, ctx.Err()
		}
	}
	if n <= s.failN {
		return RawBatch{}, s.err
	}
	return RawBatch{Payload: s.items}, nil
}

func (s *stubConnector) Transform(batch RawBatch) ([]domain.ContentItem, error) {
	if s.transErr != nil {
		return nil, s.transErr
	}
	items, _ := batch.Payload.([]domain.ContentItem)
	return items, nil
}

func fastPolicy() Policy {
	return Policy{
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		Timeout:         50 * time.Millisecond,
		Concurrency:     4,
	}
}

func TestCollectRetriesTransientFailures(t *testing.T) {
	t.Parallel()

	flaky := &stubConnector{
		name:  "flaky",
		failN: 2,
		err:   errors.New("connection reset"),
		items: []domain.ContentItem{{Title: "A"}},
	}

	outcomes := NewRunner(fastPolicy(), nil).Collect(context.Background(), []Connector{flaky})

	require.Len(t, outcomes, 1)
	require.NoError(t, outcomes[0].Err)
	assert.Equal(t, 3, outcomes[0].Attempts)
	require.Len(t, outcomes[0].Items, 1)
	assert.Equal(t, "flaky", outcomes[0].Items[0].Source)
}

func TestCollectIsolatesFailingConnectors(t *testing.T) {
	t.Parallel()

	broken := &stubConnector{name: "broken", failN: 100, err: errors.New("dns failure")}
	slow := &stubConnector{name: "slow", delay: time.Second}
	crashing := &stubConnector{name: "crashing", panics: true}
	healthy := &stubConnector{name: "healthy", items: []domain.ContentItem{{Title: "B", Source: "healthy-feed"}}}

	outcomes := NewRunner(fastPolicy(), nil).Collect(context.Background(), []Connector{broken, slow, crashing, healthy})

	require.Len(t, outcomes, 4)

	var fetchErr *FetchError
	require.ErrorAs(t, outcomes[0].Err, &fetchErr)
	assert.Equal(t, "broken", fetchErr.Source)
	assert.Equal(t, 3, fetchErr.Attempts)

	require.Error(t, outcomes[1].Err)
	assert.ErrorIs(t, outcomes[1].Err, context.DeadlineExceeded)

	require.Error(t, outcomes[2].Err)
	assert.Contains(t, outcomes[2].Err.Error(), "panic")

	require.NoError(t, outcomes[3].Err)
	require.Len(t, outcomes[3].Items, 1)
	assert.Equal(t, "healthy-feed", outcomes[3].Items[0].Source)
}

func TestCollectDoesNotRetryPermanentErrors(t *testing.T) {
	t.Parallel()

	unauthorized := &stubConnector{name: "auth", failN: 100, err: Permanent(errors.New("401 unauthorized"))}

	outcomes := NewRunner(fastPolicy(), nil).Collect(context.Background(), []Connector{unauthorized})

	require.Error(t, outcomes[0].Err)
	assert.Equal(t, 1, outcomes[0].Attempts)
	assert.Contains(t, outcomes[0].Err.Error(), "401 unauthorized")
}

func TestCollectReportsTransformErrorsWithoutRetry(t *testing.T) {
	t.Parallel()

	bad := &stubConnector{name: "schema", transErr: errors.New("missing field title")}

	outcomes := NewRunner(fastPolicy(), nil).Collect(context.Background(), []Connector{bad})

	require.Error(t, outcomes[0].Err)
	assert.Equal(t, 1, outcomes[0].Attempts)
	assert.Contains(t, outcomes[0].Err.Error(), "transform")
}

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(&stubConnector{name: "zeta"})
	reg.Register(&stubConnector{name: "alpha"})
	reg.Register(&stubConnector{name: "zeta"})

	all := reg.All()
	require.Len(t, all, 2)
	assert.Equal(t, "zeta", all[0].Name())
	assert.Equal(t, "alpha", all[1].Name())
	assert.Equal(t, []string{"alpha", "zeta"}, reg.Names())

	_, err := reg.Resolve("missing")
	assert.Error(t, err)
}
