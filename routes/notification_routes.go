package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/taskpulse/taskpulse_backend/controllers"
	"github.com/taskpulse/taskpulse_backend/middleware"
	"github.com/taskpulse/taskpulse_backend/services"
	"github.com/taskpulse/taskpulse_backend/websocket"
)

// RegisterNotificationRoutes registers all notification-related routes
func RegisterNotificationRoutes(e *echo.Echo, hub *websocket.Hub, notifications *services.NotificationService, progress *services.ProgressService) {
	notificationController := controllers.NewNotificationController(notifications)
	progressController := controllers.NewProgressController(notifications, progress)

	// All notification routes require authentication; the JWT's user id is
	// the recipient identity.
	notificationGroup := e.Group("/api/notifications")
	notificationGroup.Use(middleware.JWTMiddleware())

	notificationGroup.GET("", notificationController.ListNotifications)

	// Progress reporting endpoints used by task-executing workers
	notificationGroup.POST("/progress", progressController.CreateProgress)
	notificationGroup.GET("/progress/:id", progressController.GetProgress)
	notificationGroup.PUT("/progress/:id", progressController.UpdateProgress)

	// WebSocket endpoint authenticates inside the handler; browsers cannot
	// send an Authorization header on the upgrade request.
	e.GET("/api/ws", func(c echo.Context) error {
		return websocket.HandleWebSocket(c, hub, notifications)
	})
}
