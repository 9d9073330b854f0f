package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskpulse/taskpulse_backend/middleware"
	"github.com/taskpulse/taskpulse_backend/models"
	"github.com/taskpulse/taskpulse_backend/repositories"
	"github.com/taskpulse/taskpulse_backend/services"
)

type NotificationController struct {
	notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{notifications: notifications}
}

// ListNotifications returns the authenticated user's notifications in
// ascending time order, optionally limited by a "since" query parameter
// (RFC3339). Expired notifications are already gone from the store and never
// appear here.
func (nc *NotificationController) ListNotifications(c echo.Context) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return err
	}

	var since *time.Time
	if sinceParam := c.QueryParam("since"); sinceParam != "" {
		parsed, err := time.Parse(time.RFC3339, sinceParam)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid since parameter, expected RFC3339 timestamp",
			})
		}
		since = &parsed
	}

	notifications, err := nc.notifications.ListForRecipient(c.Request().Context(), userID, since)
	if err != nil {
		return storageErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Notifications retrieved successfully",
		Data:    notifications,
	})
}

// authenticatedUserID resolves the caller's user id from the JWT claims set
// by the JWT middleware.
func authenticatedUserID(c echo.Context) (primitive.ObjectID, error) {
	rawID := middleware.GetUserIDFromToken(c)
	if rawID == "" {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	userID, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusUnauthorized, "Invalid user ID in token")
	}

	return userID, nil
}

// storageErrorResponse maps record store failures onto HTTP responses
func storageErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Notification not found",
		})
	case errors.Is(err, repositories.ErrStorageUnavailable):
		return c.JSON(http.StatusServiceUnavailable, models.Response{
			Status:  http.StatusServiceUnavailable,
			Message: "Notification storage is temporarily unavailable",
		})
	default:
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Database error",
		})
	}
}
