package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/taskpulse/taskpulse_backend/services"
	"github.com/taskpulse/taskpulse_backend/websocket"
)

// SetupRoutes configures all API routes by calling individual route registration functions
func SetupRoutes(e *echo.Echo, hub *websocket.Hub, notifications *services.NotificationService, progress *services.ProgressService) {
	RegisterNotificationRoutes(e, hub, notifications, progress)
}
