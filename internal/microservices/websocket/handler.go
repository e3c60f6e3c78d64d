package websocket

import (
	"log/slog"
	"net/http"

	"manhwahub/internal/microservices/events"
	"manhwahub/internal/microservices/http-api/middleware"
	"manhwahub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// HTTP upgrade handler to WebSocket connections

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// allow all origins for development purpose; can restrict later
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventSubscriber is the in-process change feed (events.Hub).
type EventSubscriber interface {
	Subscribe(userID int64) (<-chan events.Event, func())
}

// WSHandler upgrades an authenticated request and relays that user's change
// events to it.
func WSHandler(hub EventSubscriber, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		// get user info from JWT middleware
		userID, ok := middleware.UserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: user ID not found"})
			return
		}
		userName := "Unknown"
		if claims, exists := c.Get(middleware.ContextClaims); exists {
			if claimsData, ok := claims.(*service.Claims); ok && claimsData.Name != "" {
				userName = claimsData.Name
			}
		}

		// upgrade writes its own error response
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "user_id", userID, "error", err)
			return
		}

		client := NewClient(uuid.NewString(), userID, userName, conn, logger)
		feed, unsubscribe := hub.Subscribe(userID)
		logger.Info("websocket client connected", "client_id", client.ID, "user_id", userID)

		go client.WritePump()
		go client.ReadPump()
		go relay(client, feed, unsubscribe, logger)
	}
}

func relay(client *Client, feed <-chan events.Event, unsubscribe func(), logger *slog.Logger) {
	defer unsubscribe()

	if welcome, err := NewSystemMessage("connected").ToJSON(); err == nil {
		_ = client.SendMessage(welcome)
	}

	for {
		select {
		case <-client.Done():
			logger.Info("websocket client disconnected", "client_id", client.ID)
			return
		case event, ok := <-feed:
			if !ok {
				_ = client.Close()
				return
			}
			data, err := NewEventMessage(event.Name).ToJSON()
			if err != nil {
				continue
			}
			if err := client.SendMessage(data); err != nil {
				logger.Debug("websocket event dropped", "client_id", client.ID, "error", err)
			}
		}
	}
}
