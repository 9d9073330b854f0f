package websocket

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskpulse/taskpulse_backend/middleware"
	"github.com/taskpulse/taskpulse_backend/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket upgrades the connection and streams the caller's
// notifications. The client authenticates with its JWT, passed either as a
// "token" query parameter (browsers cannot set headers on WebSocket
// requests) or a regular Authorization header. On connect the handler
// replays the user's current notifications, optionally limited by a "since"
// query parameter (RFC3339), then forwards new ones as they are written.
func HandleWebSocket(c echo.Context, hub *Hub, notifications *services.NotificationService) error {
	token := c.QueryParam("token")
	if token == "" {
		token = strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
	}
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
	}

	claims, err := middleware.ParseToken(token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid user ID in token")
	}

	var since *time.Time
	if sinceParam := c.QueryParam("since"); sinceParam != "" {
		parsed, err := time.Parse(time.RFC3339, sinceParam)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid since parameter, expected RFC3339")
		}
		since = &parsed
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		Conn:   conn,
	}

	hub.Register(client)

	// Replay whatever currently exists for the user before streaming new
	// notifications. Expired records are already gone from the store.
	existing, err := notifications.ListForRecipient(c.Request().Context(), userID, since)
	if err != nil {
		log.Printf("Error replaying notifications for user %s: %v", userID.Hex(), err)
	} else {
		for i := range existing {
			if err := client.WriteJSON(existing[i]); err != nil {
				break
			}
		}
	}

	// Consumers don't send anything; the read loop only detects disconnects.
	go func() {
		defer hub.Unregister(client)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()

	return nil
}
