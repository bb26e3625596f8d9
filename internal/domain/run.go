package domain

import (
	"fmt"
	"time"
)

const (
	MinBatchSize = 1
	MaxBatchSize = 100
)

// RunConfig is the immutable per-run policy supplied by the trigger.
type RunConfig struct {
	BatchSize      int     `json:"batchSize"`
	ScoreThreshold float64 `json:"scoreThreshold"`
}

// Validate checks the documented ranges.
func (c RunConfig) Validate() error {
	if c.BatchSize < MinBatchSize || c.BatchSize > MaxBatchSize {
		return fmt.Errorf("%w: batch size %d outside [%d,%d]", ErrInvalidConfig, c.BatchSize, MinBatchSize, MaxBatchSize)
	}
	if c.ScoreThreshold < 0 || c.ScoreThreshold > 100 {
		return fmt.Errorf("%w: score threshold %.2f outside [0,100]", ErrInvalidConfig, c.ScoreThreshold)
	}
	return nil
}

// RunResult summarises one orchestrated run.
type RunResult struct {
	Fetched  int           `json:"fetched"`
	Scored   int           `json:"scored"`
	Stored   int           `json:"stored"`
	Rejected int           `json:"rejected"`
	Errors   []string      `json:"errors"`
	Duration time.Duration `json:"duration"`
}

// Partition is the deduplicator's split of a batch.
type Partition struct {
	Unique     []ScoredItem
	Duplicates []ScoredItem
}

// OracleScore is the optional external rating of an item.
type OracleScore struct {
	Overall    float64        `json:"overall"`
	Reasoning  string         `json:"reasoning,omitempty"`
	Categories []string       `json:"categories,omitempty"`
	Sentiment  string         `json:"sentiment,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}
