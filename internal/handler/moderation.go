package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"unipick/backend/internal/middleware"
	"unipick/backend/internal/models"
	"unipick/backend/internal/service"
)

type ModerationHandler interface {
	GetReviewQueue(c *gin.Context)
	Review(c *gin.Context)
	GetStats(c *gin.Context)
	GetLogDetail(c *gin.Context)
}

type moderationHandler struct {
	moderation *service.ModerationService
	logger     *zap.Logger
}

func NewModerationHandler(moderation *service.ModerationService, logger *zap.Logger) ModerationHandler {
	return &moderationHandler{moderation: moderation, logger: logger}
}

// GetReviewQueue handles GET /api/v1/moderation/admin/review-queue
// Query parameters:
// - status: outcome filter, defaults to "flagged"
// - content_type: optional "item"/"profile" filter
// - limit, offset: pagination
func (h *moderationHandler) GetReviewQueue(c *gin.Context) {
	status := models.ModerationStatus(c.DefaultQuery("status", string(models.StatusFlagged)))
	contentType := models.ContentType(c.Query("content_type"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.moderation.ReviewQueue(c.Request.Context(), status, contentType, limit, offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"total":   len(entries),
	})
}

// Review handles POST /api/v1/moderation/admin/review
func (h *moderationHandler) Review(c *gin.Context) {
	var req models.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reviewerID := c.GetString(middleware.ContextUserID)
	decision := models.ModerationStatus(req.Decision)

	if err := h.moderation.ManualReview(c.Request.Context(), req.LogID, reviewerID, decision, req.Note); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"log_id":   req.LogID,
		"decision": req.Decision,
	})
}

// GetStats handles GET /api/v1/moderation/admin/stats
func (h *moderationHandler) GetStats(c *gin.Context) {
	stats, err := h.moderation.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetLogDetail handles GET /api/v1/moderation/admin/logs/:id
func (h *moderationHandler) GetLogDetail(c *gin.Context) {
	logID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid log id"})
		return
	}

	detail, err := h.moderation.LogDetail(c.Request.Context(), logID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}
