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

type ItemHandler interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	Revert(c *gin.Context)
	RecordView(c *gin.Context)
	ToggleFavorite(c *gin.Context)
	GetStats(c *gin.Context)
	ListFavorites(c *gin.Context)
	ListViewHistory(c *gin.Context)
}

type itemHandler struct {
	items  *service.ItemService
	logger *zap.Logger
}

func NewItemHandler(items *service.ItemService, logger *zap.Logger) ItemHandler {
	return &itemHandler{items: items, logger: logger}
}

func itemID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return 0, false
	}
	return id, true
}

// Create handles POST /api/v1/items
func (h *itemHandler) Create(c *gin.Context) {
	var req models.ItemCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	item, result, err := h.items.Create(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"item":       item,
		"moderation": result,
	})
}

// List handles GET /api/v1/items
func (h *itemHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	viewerID := c.GetString(middleware.ContextUserID)

	views, err := h.items.List(c.Request.Context(), viewerID, limit, offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": views,
		"total": len(views),
	})
}

// Get handles GET /api/v1/items/:id
func (h *itemHandler) Get(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	view, err := h.items.Get(c.Request.Context(), id, c.GetString(middleware.ContextUserID))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Update handles PUT /api/v1/items/:id
func (h *itemHandler) Update(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	var req models.ItemUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	item, result, err := h.items.Update(c.Request.Context(), userID, id, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"item":       item,
		"moderation": result,
	})
}

// Delete handles DELETE /api/v1/items/:id
func (h *itemHandler) Delete(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	if err := h.items.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item deleted"})
}

// Revert handles POST /api/v1/items/:id/revert
func (h *itemHandler) Revert(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	item, err := h.items.Revert(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// RecordView handles POST /api/v1/items/:id/view
func (h *itemHandler) RecordView(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	viewCount, err := h.items.RecordView(c.Request.Context(), id, c.GetString(middleware.ContextUserID))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "View recorded",
		"view_count": viewCount,
	})
}

// ToggleFavorite handles POST /api/v1/items/:id/favorite
func (h *itemHandler) ToggleFavorite(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	favorited, err := h.items.ToggleFavorite(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"is_favorited": favorited})
}

// GetStats handles GET /api/v1/items/:id/stats
func (h *itemHandler) GetStats(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}

	stats, err := h.items.Stats(c.Request.Context(), id, c.GetString(middleware.ContextUserID))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ListFavorites handles GET /api/v1/items/user/favorites
func (h *itemHandler) ListFavorites(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	userID := c.GetString(middleware.ContextUserID)
	views, err := h.items.Favorites(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": views, "total": len(views)})
}

// ListViewHistory handles GET /api/v1/items/user/view-history
func (h *itemHandler) ListViewHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	userID := c.GetString(middleware.ContextUserID)
	views, err := h.items.ViewHistory(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": views, "total": len(views)})
}
