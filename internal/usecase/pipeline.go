package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ContentCurator/internal/connector"
	"ContentCurator/internal/dedup"
	"ContentCurator/internal/domain"
	"ContentCurator/internal/eligibility"
	"ContentCurator/internal/scoring"
	"ContentCurator/internal/staging"
)

const (
	DefaultEvaluationMultiplier = 3
	DefaultMaxErrors            = 50
)

// PipelineDeps wires the components of one ingestion run.
type PipelineDeps struct {
	Registry    *connector.Registry
	Runner      *connector.Runner
	Scorer      *scoring.Scorer
	Eligibility *eligibility.Filter
	Dedup       *dedup.Deduplicator
	Stager      *staging.Writer
	Logger      *slog.Logger

	EvaluationMultiplier int
	MaxErrors            int
}

// Pipeline implements the fetch, score, filter, dedup and stage workflow.
type Pipeline struct {
	registry    *connector.Registry
	runner      *connector.Runner
	scorer      *scoring.Scorer
	eligibility *eligibility.Filter
	dedup       *dedup.Deduplicator
	stager      *staging.Writer
	logger      *slog.Logger

	multiplier int
	maxErrors  int
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		registry:    deps.Registry,
		runner:      deps.Runner,
		scorer:      deps.Scorer,
		eligibility: deps.Eligibility,
		dedup:       deps.Dedup,
		stager:      deps.Stager,
		logger:      deps.Logger,
		multiplier:  deps.EvaluationMultiplier,
		maxErrors:   deps.MaxErrors,
	}
	if p.multiplier <= 0 {
		p.multiplier = DefaultEvaluationMultiplier
	}
	if p.maxErrors <= 0 {
		p.maxErrors = DefaultMaxErrors
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

var errNotWired = errors.New("pipeline dependencies not wired")

// Run executes one ingestion pass. Source, dedup and staging failures are reported in
// RunResult.Errors; the error return is reserved for invalid configuration or wiring.
func (p *Pipeline) Run(ctx context.Context, cfg domain.RunConfig) (domain.RunResult, error) {
	start := time.Now()
	if err := cfg.Validate(); err != nil {
		return domain.RunResult{}, err
	}
	if p.registry == nil || p.runner == nil || p.scorer == nil || p.eligibility == nil || p.dedup == nil || p.stager == nil {
		return domain.RunResult{}, errNotWired
	}

	var (
		res  domain.RunResult
		errs = newErrorList(p.maxErrors)
	)

	outcomes := p.runner.Collect(ctx, p.registry.All())
	var candidates []domain.ContentItem
	for _, o := range outcomes {
		if o.Err != nil {
			errs.Add(o.Err.Error())
			p.logger.Warn("source failed", "source", o.Source, "attempts", o.Attempts, "error", o.Err)
			continue
		}
		p.logger.Debug("source fetched", "source", o.Source, "items", len(o.Items), "elapsed", o.Elapsed)
		candidates = append(candidates, o.Items...)
	}
	res.Fetched = len(candidates)

	if limit := cfg.BatchSize * p.multiplier; len(candidates) > limit {
		candidates = candidates[:limit]
	}

	batch, err := p.dedup.NewBatch(ctx, candidates)
	if err != nil {
		errs.Add(fmt.Sprintf("dedup: %v", err))
	}

	accepted := make([]domain.ScoredItem, 0, cfg.BatchSize)
	for _, item := range candidates {
		if len(accepted) >= cfg.BatchSize {
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			errs.Add(fmt.Sprintf("run interrupted: %v", ctxErr))
			break
		}

		scored := p.scorer.Score(ctx, item, cfg.ScoreThreshold)
		res.Scored++
		if scored.Recommendation == domain.RecommendReject {
			res.Rejected++
			continue
		}

		check := p.eligibility.Check(scored, item.Category(), cfg.ScoreThreshold)
		if !check.Eligible {
			scored.Score = check.Score
			scored.Warnings = append(scored.Warnings, check.Reasons...)
			scored.Recommendation = scoring.Recommend(scored.Score, scored.Confidence, cfg.ScoreThreshold)
		}

		if _, unique := batch.Admit(item); !unique {
			res.Rejected++
			continue
		}
		accepted = append(accepted, scored)
	}

	if len(accepted) > 0 {
		staged := p.stager.Stage(ctx, accepted, cfg.ScoreThreshold)
		res.Stored = staged.Total()
		res.Rejected += staged.Rejected + staged.AlreadyQueued
		for _, e := range staged.Errors {
			errs.Add(e)
		}
	}

	res.Errors = errs.List()
	res.Duration = time.Since(start)

	p.logger.Info("run finished",
		"fetched", res.Fetched,
		"scored", res.Scored,
		"stored", res.Stored,
		"rejected", res.Rejected,
		"errors", len(res.Errors),
		"duration", res.Duration,
	)
	return res, nil
}
