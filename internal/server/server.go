package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ContentCurator/internal/approval"
	"ContentCurator/internal/config"
	"ContentCurator/internal/domain"
)

// PipelineRunner triggers one orchestrated run.
type PipelineRunner interface {
	Run(ctx context.Context, cfg domain.RunConfig) (domain.RunResult, error)
}

// Reviewer applies review decisions to queue records.
type Reviewer interface {
	Approve(ctx context.Context, id, reviewer, notes string) approval.Response
	Reject(ctx context.Context, id, reviewer, notes string) approval.Response
	BulkApprove(ctx context.Context, ids []string, reviewer string) approval.BulkResult
	AutoApprove(ctx context.Context, minScore float64) (approval.BulkResult, error)
	Reconcile(ctx context.Context) (approval.BulkResult, error)
}

// QueueReader lists staged records for reviewers.
type QueueReader interface {
	ListQueue(ctx context.Context, filter domain.QueueFilter) ([]domain.QueueRecord, error)
}

// Pinger reports storage health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the use cases exposed over HTTP.
type Deps struct {
	Pipeline       PipelineRunner
	Reviewer       Reviewer
	Queue          QueueReader
	Health         Pinger
	Run            domain.RunConfig
	AutoApproveMin float64
	Logger         *slog.Logger
}

// Server is the review and run HTTP surface.
type Server struct {
	cfg    config.ServerConfig
	deps   Deps
	router *gin.Engine
	logger *slog.Logger
}

// New builds the router; it does not start listening.
func New(cfg config.ServerConfig, deps Deps) *Server {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{cfg: cfg, deps: deps, router: router, logger: logger}
	s.setupRoutes()
	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.health)

	api := s.router.Group("/api/v1")
	api.POST("/runs", s.triggerRun)

	queue := api.Group("/queue")
	{
		queue.GET("", s.listQueue)
		queue.POST("/bulk-approve", s.bulkApprove)
		queue.POST("/auto-approve", s.autoApprove)
		queue.POST("/reconcile", s.reconcile)
		queue.POST("/:id/approve", s.approve)
		queue.POST("/:id/reject", s.reject)
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}
