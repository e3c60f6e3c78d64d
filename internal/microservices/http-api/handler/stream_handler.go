package handler

import (
	"net/http"
	"time"

	"manhwahub/internal/microservices/events"
	"manhwahub/internal/microservices/http-api/middleware"

	"github.com/gin-gonic/gin"
)

// EventSubscriber is the in-process change feed (events.Hub).
type EventSubscriber interface {
	Subscribe(userID int64) (<-chan events.Event, func())
}

type StreamHandler struct {
	events    EventSubscriber
	heartbeat time.Duration
}

func NewStreamHandler(events EventSubscriber, heartbeat time.Duration) *StreamHandler {
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	return &StreamHandler{events: events, heartbeat: heartbeat}
}

func (h *StreamHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notifications/stream", h.Stream)
}

// Stream relays the caller's change events as Server-Sent Events. Events
// carry no data; clients re-fetch on each one.
// GET /api/v1/notifications/stream
func (h *StreamHandler) Stream(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	feed, unsubscribe := h.events.Subscribe(userID)
	defer unsubscribe()

	// Initial comment to keep some proxies happy.
	if _, err := w.Write([]byte(": ok\n\n")); err != nil {
		return
	}
	flusher.Flush()

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	done := c.Request.Context().Done()
	for {
		select {
		case <-done:
			return
		case <-heartbeat.C:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case event, ok := <-feed:
			if !ok {
				return
			}
			if _, err := w.Write([]byte("event: " + event.Name + "\ndata: {}\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
