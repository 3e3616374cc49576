package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"unipick/backend/internal/middleware"
	"unipick/backend/internal/models"
	"unipick/backend/internal/service"
)

type ProfileHandler interface {
	GetMe(c *gin.Context)
	UpdateMe(c *gin.Context)
	Revert(c *gin.Context)
	GetPublic(c *gin.Context)
}

type profileHandler struct {
	profiles *service.ProfileService
	logger   *zap.Logger
}

func NewProfileHandler(profiles *service.ProfileService, logger *zap.Logger) ProfileHandler {
	return &profileHandler{profiles: profiles, logger: logger}
}

// GetMe handles GET /api/v1/profiles/me
func (h *profileHandler) GetMe(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	email := c.GetString(middleware.ContextEmail)

	profile, err := h.profiles.GetOwn(c.Request.Context(), userID, email)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateMe handles PUT /api/v1/profiles/me
func (h *profileHandler) UpdateMe(c *gin.Context) {
	var req models.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	profile, result, err := h.profiles.UpdateOwn(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":    profile,
		"moderation": result,
	})
}

// Revert handles POST /api/v1/profiles/me/revert
func (h *profileHandler) Revert(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	profile, err := h.profiles.Revert(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// GetPublic handles GET /api/v1/profiles/:id
func (h *profileHandler) GetPublic(c *gin.Context) {
	profileID := c.Param("id")
	viewerID := c.GetString(middleware.ContextUserID)

	view, err := h.profiles.GetPublic(c.Request.Context(), profileID, viewerID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
