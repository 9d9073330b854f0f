package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/taskpulse/taskpulse_backend/config"
	"github.com/taskpulse/taskpulse_backend/middleware"
	"github.com/taskpulse/taskpulse_backend/repositories"
	"github.com/taskpulse/taskpulse_backend/routes"
	"github.com/taskpulse/taskpulse_backend/services"
	"github.com/taskpulse/taskpulse_backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// Connect to Redis (optional, enables cross-instance fanout)
	redisClient := config.ConnectRedis()

	// Connect to database; this also ensures the (userId, time) and expires
	// TTL indexes on the notifications collection.
	client := config.ConnectDB()

	// Create WebSocket hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// With Redis the hub consumes the fanout channel, so writes on any
	// instance reach sockets held here. Without it, writes feed the hub
	// directly and delivery is single-instance.
	var sink services.NotificationSink
	if redisClient != nil {
		sink = websocket.NewRedisFanout(redisClient)
		go wsHub.ListenRedis(context.Background(), redisClient)
	} else {
		sink = wsHub
	}

	// Initialize repositories and services
	notificationRepo := repositories.NewNotificationRepository(client)
	notificationService := services.NewNotificationService(notificationRepo, sink)
	progressService := services.NewProgressService(notificationService)

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	customValidator := &CustomValidator{validator: validator.New()}
	e.Validator = customValidator

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeaders())

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "Taskpulse Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	e.Use(httpsRedirect())

	// Setup routes
	routes.SetupRoutes(e, wsHub, notificationService, progressService)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}

func httpsRedirect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("X-Forwarded-Proto") == "http" {
				return c.Redirect(301, "https://"+c.Request().Host+c.Request().RequestURI)
			}
			return next(c)
		}
	}
}
