package controllers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskpulse/taskpulse_backend/models"
	"github.com/taskpulse/taskpulse_backend/services"
)

type ProgressController struct {
	notifications *services.NotificationService
	progress      *services.ProgressService
}

func NewProgressController(notifications *services.NotificationService, progress *services.ProgressService) *ProgressController {
	return &ProgressController{notifications: notifications, progress: progress}
}

// CreateProgressRequest represents the request body for creating a progress record
type CreateProgressRequest struct {
	Title   string  `json:"title" validate:"required"`
	Total   float64 `json:"total"`
	State   string  `json:"state,omitempty"`
	Current float64 `json:"current,omitempty"`
	Message string  `json:"message,omitempty"`
}

// CreateProgress creates a progress record for the authenticated user. The
// record expires an hour after its last update, so abandoned tasks clean up
// after themselves.
func (pc *ProgressController) CreateProgress(c echo.Context) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return err
	}

	var req CreateProgressRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Title is required",
		})
	}

	record, err := pc.progress.CreateProgressRecord(c.Request().Context(), userID, req.Title, req.Total, &services.ProgressOptions{
		State:   models.ProgressState(req.State),
		Current: req.Current,
		Message: req.Message,
	})
	if err != nil {
		return storageErrorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Progress record created successfully",
		Data:    record,
	})
}

// UpdateProgress overwrites fields of an existing progress record and renews
// its expiry. The body is a flat map of field names to new values; only
// total, current, state and message are accepted, anything else rejects the
// whole update. A 404 here usually means the record already expired and the
// caller should stop reporting.
func (pc *ProgressController) UpdateProgress(c echo.Context) error {
	record, err := pc.ownedProgressRecord(c)
	if record == nil {
		return err
	}

	var fields map[string]interface{}
	if err := c.Bind(&fields); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	updated, err := pc.progress.UpdateProgress(c.Request().Context(), record, fields)
	if err != nil {
		var fieldErr *services.InvalidFieldError
		if errors.As(err, &fieldErr) {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: fieldErr.Error(),
			})
		}
		return storageErrorResponse(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Progress record updated successfully",
		Data:    updated,
	})
}

// GetProgress fetches a single progress record, for consumers that poll
// instead of holding a WebSocket.
func (pc *ProgressController) GetProgress(c echo.Context) error {
	record, err := pc.ownedProgressRecord(c)
	if record == nil {
		return err
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Progress record retrieved successfully",
		Data:    record,
	})
}

// ownedProgressRecord loads the progress record addressed by the :id param
// and checks it belongs to the caller. Records of other users are reported
// as not found rather than forbidden. On failure the response has already
// been written and the record is nil; callers return the error as-is.
func (pc *ProgressController) ownedProgressRecord(c echo.Context) (*models.Notification, error) {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return nil, err
	}

	recordID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return nil, c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid record ID",
		})
	}

	record, err := pc.notifications.GetByID(c.Request().Context(), recordID)
	if err != nil {
		return nil, storageErrorResponse(c, err)
	}

	if record.UserID != userID || record.Type != models.NotificationTypeProgress {
		return nil, c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Notification not found",
		})
	}

	return record, nil
}
