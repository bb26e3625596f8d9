package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"ContentCurator/internal/approval"
	"ContentCurator/internal/config"
	"ContentCurator/internal/connector"
	"ContentCurator/internal/dedup"
	"ContentCurator/internal/domain"
	"ContentCurator/internal/eligibility"
	"ContentCurator/internal/infrastructure/llm"
	"ContentCurator/internal/infrastructure/ml"
	"ContentCurator/internal/infrastructure/parser"
	"ContentCurator/internal/infrastructure/scheduler"
	"ContentCurator/internal/infrastructure/storage"
	"ContentCurator/internal/logging"
	"ContentCurator/internal/ports"
	"ContentCurator/internal/scoring"
	"ContentCurator/internal/server"
	"ContentCurator/internal/staging"
	"ContentCurator/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *storage.Store
	pipeline *usecase.Pipeline
	review   *approval.Service
	closers  []io.Closer
}

// New opens storage, migrates it when configured and builds every component.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	if cfg.Database.AutoMigrate {
		if err := storage.Migrate(cfg.Database.Driver, cfg.Database.DSN); err != nil {
			return nil, err
		}
	}
	store, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	a := &Application{cfg: cfg, logger: baseLogger, store: store, closers: []io.Closer{store}}

	factory := parser.NewFactory(cfg.GitHub, &http.Client{Timeout: cfg.Retry.Timeout}, baseLogger.With("component", "connector.factory"))
	registry, err := factory.Registry(ctx, cfg.Sources)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	oracle, err := a.buildOracle(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	runner := connector.NewRunner(connector.Policy{
		MaxRetries:      cfg.Retry.MaxRetries,
		InitialInterval: cfg.Retry.InitialInterval,
		MaxInterval:     cfg.Retry.MaxInterval,
		Timeout:         cfg.Retry.Timeout,
		Concurrency:     cfg.Retry.Concurrency,
	}, baseLogger.With("component", "connector.runner"))

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Registry:             registry,
		Runner:               runner,
		Scorer:               scoring.New(oracle, baseLogger.With("component", "scoring")),
		Eligibility:          eligibility.New(eligibility.DefaultRules(), nil, baseLogger.With("component", "eligibility")),
		Dedup:                dedup.New(store, baseLogger.With("component", "dedup")),
		Stager:               staging.NewWriter(store, baseLogger.With("component", "staging")),
		Logger:               baseLogger.With("component", "pipeline"),
		EvaluationMultiplier: cfg.Pipeline.EvaluationMultiplier,
		MaxErrors:            cfg.Pipeline.MaxErrors,
	})
	a.review = approval.NewService(store, store, baseLogger.With("component", "approval"),
		approval.WithPageSize(cfg.Approval.PageSize))

	baseLogger.Debug("application wired",
		"driver", cfg.Database.Driver,
		"sources", registry.Names(),
		"oracle", cfg.Oracle.Provider,
	)
	return a, nil
}

// buildOracle returns nil when no provider is configured or credentials are absent.
func (a *Application) buildOracle(ctx context.Context) (ports.Oracle, error) {
	cfg := a.cfg.Oracle
	log := a.logger.With("component", "oracle")

	var oracle ports.Oracle
	switch cfg.Provider {
	case "", config.OracleNone:
		return nil, nil
	case config.OracleHTTP:
		oracle = ml.NewClient(cfg)
	case config.OracleChatGPT:
		if cfg.APIKey == "" {
			log.Warn("chatgpt oracle disabled: no api key")
			return nil, nil
		}
		oracle = llm.NewChatGPTClient(cfg)
	case config.OracleGemini:
		if cfg.APIKey == "" {
			log.Warn("gemini oracle disabled: no api key")
			return nil, nil
		}
		client, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client)
		oracle = client
	default:
		return nil, fmt.Errorf("%w: oracle provider %q", domain.ErrInvalidConfig, cfg.Provider)
	}

	log.Info("oracle enabled", "provider", cfg.Provider, "rate", cfg.RatePerSecond)
	return ml.NewThrottled(oracle, cfg.RatePerSecond, cfg.Burst), nil
}

// Run performs one pipeline pass with the configured run policy.
func (a *Application) Run(ctx context.Context, run domain.RunConfig) (domain.RunResult, error) {
	return a.pipeline.Run(ctx, run)
}

// Config returns the validated configuration the application was built with.
func (a *Application) Config() config.Config {
	return a.cfg
}

// RunConfig is the configured default run policy.
func (a *Application) RunConfig() domain.RunConfig {
	return a.cfg.Pipeline.RunConfig()
}

// Approval exposes the review service.
func (a *Application) Approval() *approval.Service {
	return a.review
}

// Queue exposes the queue store for listings.
func (a *Application) Queue() ports.QueueStore {
	return a.store
}

// Serve runs the HTTP surface and, when enabled, the interval scheduler until ctx ends.
func (a *Application) Serve(ctx context.Context) error {
	var sched *usecase.Scheduler
	if a.cfg.Scheduler.Enabled {
		driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval, a.cfg.Scheduler.RunOnStart)
		sched = usecase.NewScheduler(driver, a.pipeline, a.RunConfig(), a.logger.With("component", "scheduler"))
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		a.logger.Info("scheduler started", "interval", a.cfg.Scheduler.Interval)
	}

	srv := server.New(a.cfg.Server, server.Deps{
		Pipeline:       a.pipeline,
		Reviewer:       a.review,
		Queue:          a.store,
		Health:         a.store,
		Run:            a.RunConfig(),
		AutoApproveMin: a.cfg.Approval.AutoApproveMin,
		Logger:         a.logger.With("component", "http"),
	})
	serveErr := srv.ListenAndServe(ctx)

	if sched != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := sched.Stop(stopCtx); err != nil {
			a.logger.Warn("stop scheduler", "error", err)
		}
	}
	return serveErr
}

// Close releases storage and oracle clients in reverse order.
func (a *Application) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
