package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ContentCurator/internal/approval"
	"ContentCurator/internal/domain"
)

const defaultListLimit = 50

type runRequest struct {
	BatchSize      *int     `json:"batchSize" binding:"omitempty,min=1,max=100"`
	ScoreThreshold *float64 `json:"scoreThreshold" binding:"omitempty,min=0,max=100"`
}

type reviewRequest struct {
	Reviewer string `json:"reviewer"`
	Notes    string `json:"notes"`
}

type bulkApproveRequest struct {
	IDs      []string `json:"ids" binding:"required,min=1,dive,required"`
	Reviewer string   `json:"reviewer"`
}

type autoApproveRequest struct {
	MinScore *float64 `json:"minScore" binding:"omitempty,min=0,max=100"`
}

func (s *Server) health(c *gin.Context) {
	if s.deps.Health != nil {
		if err := s.deps.Health.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) triggerRun(c *gin.Context) {
	var req runRequest
	if !bindOptional(c, &req) {
		return
	}

	cfg := s.deps.Run
	if req.BatchSize != nil {
		cfg.BatchSize = *req.BatchSize
	}
	if req.ScoreThreshold != nil {
		cfg.ScoreThreshold = *req.ScoreThreshold
	}

	res, err := s.deps.Pipeline.Run(c.Request.Context(), cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) listQueue(c *gin.Context) {
	filter := domain.QueueFilter{
		Status: domain.Status(c.DefaultQuery("status", string(domain.StatusPendingReview))),
		Limit:  defaultListLimit,
	}
	switch filter.Status {
	case domain.StatusPendingReview, domain.StatusApproved, domain.StatusRejected:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status " + strconv.Quote(string(filter.Status))})
		return
	}

	if raw := c.Query("category"); raw != "" {
		category, err := domain.ParseCategory(raw)
		if err != nil {
			writeError(c, err)
			return
		}
		filter.Category = &category
	}

	var err error
	if filter.MinScore, err = floatQuery(c, "min_score", 0); err != nil {
		return
	}
	if filter.Limit, err = intQuery(c, "limit", defaultListLimit); err != nil {
		return
	}
	if filter.Offset, err = intQuery(c, "offset", 0); err != nil {
		return
	}

	recs, err := s.deps.Queue.ListQueue(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": recs, "count": len(recs)})
}

func (s *Server) approve(c *gin.Context) {
	var req reviewRequest
	if !bindOptional(c, &req) {
		return
	}
	writeResponse(c, s.deps.Reviewer.Approve(c.Request.Context(), c.Param("id"), req.Reviewer, req.Notes))
}

func (s *Server) reject(c *gin.Context) {
	var req reviewRequest
	if !bindOptional(c, &req) {
		return
	}
	writeResponse(c, s.deps.Reviewer.Reject(c.Request.Context(), c.Param("id"), req.Reviewer, req.Notes))
}

func (s *Server) bulkApprove(c *gin.Context) {
	var req bulkApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.deps.Reviewer.BulkApprove(c.Request.Context(), req.IDs, req.Reviewer))
}

func (s *Server) autoApprove(c *gin.Context) {
	var req autoApproveRequest
	if !bindOptional(c, &req) {
		return
	}
	minScore := s.deps.AutoApproveMin
	if req.MinScore != nil {
		minScore = *req.MinScore
	}

	res, err := s.deps.Reviewer.AutoApprove(c.Request.Context(), minScore)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) reconcile(c *gin.Context) {
	res, err := s.deps.Reviewer.Reconcile(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// bindOptional accepts an empty body; it writes 400 and returns false on malformed input.
func bindOptional(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	return false
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
		return 0, errors.New("invalid " + key)
	}
	return v, nil
}

func floatQuery(c *gin.Context, key string, def float64) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
		return 0, err
	}
	return v, nil
}

func writeResponse(c *gin.Context, resp approval.Response) {
	if resp.Success {
		c.JSON(http.StatusOK, resp)
		return
	}
	c.JSON(statusFor(resp.Err), resp)
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidConfig), errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrUnknownCategory):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
