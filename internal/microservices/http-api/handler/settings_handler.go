package handler

import (
	"context"
	"errors"
	"net/http"

	"manhwahub/internal/microservices/http-api/dto"
	"manhwahub/internal/microservices/http-api/middleware"
	"manhwahub/internal/microservices/http-api/models"
	"manhwahub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	svc service.NotificationSettingsService
}

func NewSettingsHandler(svc service.NotificationSettingsService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// RegisterRoutes registers settings routes on an authenticated group
func (h *SettingsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	settings := rg.Group("/settings")
	{
		settings.GET("", h.Get)
		settings.PATCH("", h.Update)
		settings.POST("/toggle/enabled", h.toggle(h.svc.ToggleEnabled))
		settings.POST("/toggle/sound", h.toggle(h.svc.ToggleSound))
		settings.POST("/toggle/desktop", h.toggle(h.svc.ToggleDesktop))
		settings.POST("/toggle/types/:type", h.ToggleType)
	}
}

// Get returns the user's settings, creating the defaults on first access
// GET /api/v1/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	h.respond(c, func(ctx context.Context, userID int64) (models.NotificationSettings, error) {
		return h.svc.GetSettings(ctx, userID)
	})
}

// Update merges the patch into the user's settings
// PATCH /api/v1/settings
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.respond(c, func(ctx context.Context, userID int64) (models.NotificationSettings, error) {
		return h.svc.UpdateSettings(ctx, userID, patch)
	})
}

// ToggleType flips one per-type flag
// POST /api/v1/settings/toggle/types/:type
func (h *SettingsHandler) ToggleType(c *gin.Context) {
	t, err := models.ParseNotificationType(c.Param("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.respond(c, func(ctx context.Context, userID int64) (models.NotificationSettings, error) {
		return h.svc.ToggleType(ctx, userID, t)
	})
}

func (h *SettingsHandler) toggle(op func(context.Context, int64) (models.NotificationSettings, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.respond(c, op)
	}
}

func (h *SettingsHandler) respond(c *gin.Context, op func(context.Context, int64) (models.NotificationSettings, error)) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	settings, err := op(ctx, userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, models.ErrInvalidType) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, settings)
}
