package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"manhwahub/internal/microservices/http-api/dto"
	"manhwahub/internal/microservices/http-api/middleware"
	"manhwahub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

const requestTimeout = 5 * time.Second

type NotificationHandler struct {
	svc service.NotificationService
}

func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// RegisterRoutes registers the reader-facing routes on an authenticated group
func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	notifications := rg.Group("/notifications")
	{
		notifications.GET("", h.List)
		notifications.GET("/unread-count", h.UnreadCount)
		notifications.PUT("/read-all", h.MarkAllAsRead)
		notifications.PUT("/:id/read", h.MarkAsRead)
		notifications.DELETE("/:id", h.Delete)
		notifications.DELETE("", h.ClearAll)
	}
}

// RegisterProducerRoutes registers the producer endpoint; the caller attaches scope and rate limits
func (h *NotificationHandler) RegisterProducerRoutes(rg *gin.RouterGroup, mw ...gin.HandlerFunc) {
	rg.POST("/notifications", append(mw, h.Create)...)
}

// List returns the authenticated user's notifications, newest first
// GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	list, err := h.svc.GetNotifications(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.NewNotificationListResponse(list))
}

// UnreadCount returns how many of the user's notifications are unread
// GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	count, err := h.svc.GetUnreadCount(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.UnreadCountResponse{Count: count})
}

// MarkAsRead marks a specific notification as read. Unknown ids and ids
// owned by another user are silently ignored.
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	h.withOwnedID(c, h.svc.MarkAsRead)
}

// Delete removes a single notification
// DELETE /api/v1/notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	h.withOwnedID(c, h.svc.DeleteNotification)
}

// MarkAllAsRead marks all notifications as read for the user
// PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	h.forUser(c, h.svc.MarkAllAsRead)
}

// ClearAll removes every notification of the user
// DELETE /api/v1/notifications
func (h *NotificationHandler) ClearAll(c *gin.Context) {
	h.forUser(c, h.svc.ClearAll)
}

// Create records a notification on behalf of a producer service
// POST /api/v1/internal/notifications
func (h *NotificationHandler) Create(c *gin.Context) {
	var req dto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	n, created, err := h.svc.CreateNotification(ctx, req.ToModel())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !created {
		c.JSON(http.StatusAccepted, dto.NotRecordedResponse{Created: false})
		return
	}

	c.JSON(http.StatusCreated, n)
}

func (h *NotificationHandler) forUser(c *gin.Context, op func(context.Context, int64) error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := op(ctx, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) withOwnedID(c *gin.Context, op func(context.Context, int64) error) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	owned, err := h.owns(ctx, userID, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !owned {
		c.Status(http.StatusNoContent)
		return
	}

	if err := op(ctx, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) owns(ctx context.Context, userID, id int64) (bool, error) {
	list, err := h.svc.GetNotifications(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, n := range list {
		if n.ID == id {
			return true, nil
		}
	}
	return false, nil
}
