package app

import (
	"time"

	"manhwahub/internal/microservices/http-api/handler"
	"manhwahub/internal/microservices/http-api/middleware"
	"manhwahub/internal/microservices/http-api/service"
	"manhwahub/internal/microservices/websocket"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const serviceName = "manhwahub-notifications"

// NewRouter mounts every HTTP route of the notification API.
func (a *App) NewRouter() *gin.Engine {
	if a.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/health", handler.Health(serviceName))

	notifications := handler.NewNotificationHandler(a.Notifications)
	settings := handler.NewSettingsHandler(a.Settings)
	stream := handler.NewStreamHandler(a.Hub, 25*time.Second)

	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(a.Auth))
	{
		reader := api.Group("", middleware.RequireScopes(service.ScopeNotificationsRead))
		notifications.RegisterRoutes(reader)
		settings.RegisterRoutes(reader)
		stream.RegisterRoutes(reader)
		reader.GET("/notifications/ws", websocket.WSHandler(a.Hub, a.Logger))

		producer := api.Group("/internal")
		notifications.RegisterProducerRoutes(producer,
			middleware.RequireScopes(service.ScopeNotificationsWrite),
			middleware.RateLimit(rate.Limit(a.Config.CreateRateLimit), a.Config.CreateRateBurst),
		)
	}
	return r
}
