package connector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"ContentCurator/internal/domain"
)

// Policy is the uniform retry and dispatch policy applied around every connector.
type Policy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Timeout         time.Duration
	Concurrency     int
}

// DefaultPolicy allows two retries with exponential backoff and a 20s per-attempt timeout.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:      2,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Timeout:         20 * time.Second,
		Concurrency:     8,
	}
}

func (p Policy) normalized() Policy {
	def := DefaultPolicy()
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = def.InitialInterval
	}
	if p.MaxInterval < p.InitialInterval {
		p.MaxInterval = p.InitialInterval
	}
	if p.Timeout <= 0 {
		p.Timeout = def.Timeout
	}
	if p.Concurrency <= 0 {
		p.Concurrency = def.Concurrency
	}
	return p
}

// FetchError is a source-scoped failure; it never aborts a run.
type FetchError struct {
	Source   string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("source %s failed after %d attempt(s): %v", e.Source, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks a fetch error that retrying cannot fix (bad credentials, 404, schema drift).
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var perm *permanentError
	return errors.As(err, &perm)
}

// Outcome is the settled result of one connector.
type Outcome struct {
	Source   string
	Items    []domain.ContentItem
	Attempts int
	Elapsed  time.Duration
	Err      error
}

// Runner dispatches connectors concurrently and waits for all of them to settle.
type Runner struct {
	policy Policy
	logger *slog.Logger
}

// NewRunner wires the retry policy; a nil logger disables debug output.
func NewRunner(policy Policy, logger *slog.Logger) *Runner {
	return &Runner{policy: policy.normalized(), logger: logger}
}

// Collect invokes every connector and returns outcomes in the order given.
func (r *Runner) Collect(ctx context.Context, connectors []Connector) []Outcome {
	outcomes := make([]Outcome, len(connectors))

	var g errgroup.Group
	g.SetLimit(r.policy.Concurrency)
	for i, c := range connectors {
		g.Go(func() error {
			outcomes[i] = r.runOne(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (r *Runner) runOne(ctx context.Context, c Connector) (out Outcome) {
	start := time.Now()
	out.Source = c.Name()
	defer func() {
		if rec := recover(); rec != nil {
			out.Items = nil
			out.Err = &FetchError{Source: c.Name(), Attempts: out.Attempts, Err: fmt.Errorf("connector panic: %v", rec)}
		}
		out.Elapsed = time.Since(start)
	}()

	var batch RawBatch
	operation := func() error {
		out.Attempts++
		attemptCtx, cancel := context.WithTimeout(ctx, r.policy.Timeout)
		defer cancel()

		fetched, err := c.Fetch(attemptCtx)
		if err != nil {
			var perm *permanentError
			if errors.As(err, &perm) {
				return backoff.Permanent(perm.err)
			}
			return err
		}
		batch = fetched
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), uint64(r.policy.MaxRetries)), ctx)
	notify := func(err error, wait time.Duration) {
		r.debug("connector attempt failed", "source", c.Name(), "attempt", out.Attempts, "retry_in", wait, "error", err)
	}
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		out.Err = &FetchError{Source: c.Name(), Attempts: out.Attempts, Err: err}
		return out
	}

	if batch.Source == "" {
		batch.Source = c.Name()
	}
	items, err := c.Transform(batch)
	if err != nil {
		out.Err = &FetchError{Source: c.Name(), Attempts: out.Attempts, Err: fmt.Errorf("transform: %w", err)}
		return out
	}

	for i := range items {
		if items[i].Source == "" {
			items[i].Source = c.Name()
		}
	}
	out.Items = items
	r.debug("connector produced items", "source", c.Name(), "count", len(items), "attempts", out.Attempts)
	return out
}

func (r *Runner) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.policy.InitialInterval
	b.MaxInterval = r.policy.MaxInterval
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func (r *Runner) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
