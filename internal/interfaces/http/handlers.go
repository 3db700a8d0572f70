package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/ai-collections/internal/application/port"
	"github.com/garyjia/ai-collections/internal/application/service"
	"github.com/garyjia/ai-collections/internal/domain/entity"
	"github.com/garyjia/ai-collections/internal/domain/workflow"
	"github.com/garyjia/ai-collections/internal/recommendation"
	"github.com/garyjia/ai-collections/internal/scoring"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WorklistWriter renders recommendations as a spreadsheet
type WorklistWriter interface {
	Write(w io.Writer, recs []*entity.CollectionRecommendation) error
}

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	collectionService service.CollectionService
	approvalService   service.ApprovalService
	exporter          WorklistWriter
	health            HealthChecker
	logger            Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	collectionService service.CollectionService,
	approvalService service.ApprovalService,
	exporter WorklistWriter,
	health HealthChecker,
	logger Logger,
) *Handlers {
	return &Handlers{
		collectionService: collectionService,
		approvalService:   approvalService,
		exporter:          exporter,
		health:            health,
		logger:            logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// RecommendationDetail is a recommendation together with its decision, if any
type RecommendationDetail struct {
	Recommendation *entity.CollectionRecommendation `json:"recommendation"`
	Approval       *entity.Approval                 `json:"approval,omitempty"`
}

// DecisionRequest is the reviewer's decision payload
type DecisionRequest struct {
	Action          entity.ApprovalAction `json:"action" binding:"required"`
	ModifiedContent *entity.DraftEmail    `json:"modified_content"`
	ApprovedBy      string                `json:"approved_by"`
	Notes           string                `json:"notes"`
	ExecuteNow      bool                  `json:"execute_now"`
	Deferred        bool                  `json:"deferred"`
}

// OutcomeRequest records what happened after a send
type OutcomeRequest struct {
	Outcome entity.Outcome `json:"outcome" binding:"required"`
}

// ListRecommendationsRequest represents query parameters for listing recommendations
type ListRecommendationsRequest struct {
	Status     string `form:"status"`
	CustomerID string `form:"customer_id"`
	Limit      int    `form:"limit"`
	Offset     int    `form:"offset"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	if h.health != nil {
		if err := h.health.Health(c.Request.Context()); err != nil {
			h.logger.Error("Health check failed", "error", err)
			response.Status = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, Response{
				Success: false,
				Data:    response,
				Error:   "database unavailable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// CreateRecommendation handles POST /api/collections/recommendations
func (h *Handlers) CreateRecommendation(c *gin.Context) {
	var req service.CollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid recommendation request", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	result, err := h.collectionService.Recommend(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, "Recommendation failed", err, "invoice_id", req.Invoice.ID)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    result,
	})
}

// ListRecommendations handles GET /api/recommendations
func (h *Handlers) ListRecommendations(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	recs, err := h.collectionService.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, "Failed to list recommendations", err)
		return
	}
	if recs == nil {
		recs = []*entity.CollectionRecommendation{}
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    recs,
	})
}

// GetRecommendation handles GET /api/recommendations/:id
func (h *Handlers) GetRecommendation(c *gin.Context) {
	id := c.Param("id")

	rec, err := h.collectionService.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to get recommendation", err, "id", id)
		return
	}

	approval, err := h.approvalService.FindByRecommendation(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to get approval", err, "id", id)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    RecommendationDetail{Recommendation: rec, Approval: approval},
	})
}

// DecideRecommendation handles POST /api/recommendations/:id/decision
func (h *Handlers) DecideRecommendation(c *gin.Context) {
	id := c.Param("id")

	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid decision request", "id", id, "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	result, err := h.approvalService.Decide(c.Request.Context(), service.DecisionInput{
		RecommendationID: id,
		Action:           req.Action,
		ModifiedContent:  req.ModifiedContent,
		ApprovedBy:       req.ApprovedBy,
		Notes:            req.Notes,
		ExecuteNow:       req.ExecuteNow,
		Deferred:         req.Deferred,
	})
	if err != nil {
		h.respondError(c, "Decision failed", err, "id", id)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// GetApproval handles GET /api/approvals/:id
func (h *Handlers) GetApproval(c *gin.Context) {
	id := c.Param("id")

	approval, err := h.approvalService.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to get approval", err, "id", id)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    approval,
	})
}

// ExecuteApproval handles POST /api/approvals/:id/execute.
// A failed send is reported in the body with a 200 status.
func (h *Handlers) ExecuteApproval(c *gin.Context) {
	id := c.Param("id")

	h.logger.Info("Executing approval", "approval_id", id)

	result, err := h.approvalService.Execute(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Execution failed", err, "approval_id", id)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    result,
	})
}

// RecordOutcome handles POST /api/approvals/:id/outcome
func (h *Handlers) RecordOutcome(c *gin.Context) {
	id := c.Param("id")

	var req OutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid outcome request", "id", id, "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	approval, err := h.approvalService.RecordOutcome(c.Request.Context(), id, req.Outcome)
	if err != nil {
		h.respondError(c, "Failed to record outcome", err, "approval_id", id)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    approval,
	})
}

// ExportWorklist handles GET /api/exports/worklist and returns an xlsx file
func (h *Handlers) ExportWorklist(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	recs, err := h.collectionService.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, "Failed to list recommendations for export", err)
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.Write(&buf, recs); err != nil {
		h.respondError(c, "Failed to export worklist", err)
		return
	}

	filename := "collections-worklist-" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *Handlers) bindFilter(c *gin.Context) (port.RecommendationFilter, bool) {
	var req ListRecommendationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Error("Invalid query parameters", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid query parameters",
		})
		return port.RecommendationFilter{}, false
	}

	if req.Limit <= 0 || req.Limit > 500 {
		req.Limit = 100
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	return port.RecommendationFilter{
		Status:     entity.RecommendationStatus(req.Status),
		CustomerID: req.CustomerID,
		Limit:      req.Limit,
		Offset:     req.Offset,
	}, true
}

// respondError maps service errors onto HTTP status codes
func (h *Handlers) respondError(c *gin.Context, msg string, err error, keysAndValues ...interface{}) {
	status := statusFor(err)
	h.logger.Error(msg, append(keysAndValues, "status", status, "error", err)...)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	c.JSON(status, Response{
		Success: false,
		Error:   message,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, scoring.ErrInvalidInput), errors.Is(err, service.ErrInvalidDecision):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvoiceNotCollectible):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrGenerationInProgress),
		errors.Is(err, service.ErrRecommendationPending),
		errors.Is(err, service.ErrExecutionInProgress),
		errors.Is(err, workflow.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, recommendation.ErrGenerationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
