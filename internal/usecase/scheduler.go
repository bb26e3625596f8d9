package usecase

import (
	"context"
	"log/slog"
	"time"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

// Scheduler runs the pipeline on every tick of the driver.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	run      domain.RunConfig
	logger   *slog.Logger
}

// NewScheduler binds a driver to the pipeline with a fixed run configuration.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, run domain.RunConfig, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, run: run, logger: logger}
}

// Start registers the pipeline with the driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}
	if err := s.run.Validate(); err != nil {
		return err
	}

	job := func(trigger time.Time) {
		res, err := s.pipeline.Run(ctx, s.run)
		if err != nil {
			s.logger.Error("scheduled run failed", "trigger", trigger, "error", err)
			return
		}
		s.logger.Info("scheduled run", "trigger", trigger, "stored", res.Stored, "errors", len(res.Errors))
	}

	return s.driver.Start(ctx, job)
}

// Stop tears down the driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}
