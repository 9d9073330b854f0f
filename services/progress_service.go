package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskpulse/taskpulse_backend/models"
	"github.com/taskpulse/taskpulse_backend/utils"
)

// ProgressLifetime is how long a progress record survives without an update.
// Each update pushes expires this far into the future again, so a task that
// crashes or stops reporting leaves no permanent record behind.
const ProgressLifetime = time.Hour

// RecordStore is the slice of notification storage the progress protocol
// needs. *NotificationService satisfies it.
type RecordStore interface {
	Create(ctx context.Context, notification *models.Notification) (*models.Notification, error)
	Update(ctx context.Context, notification *models.Notification) error
}

// InvalidFieldError reports an updateProgress field that is outside the
// allowed set or has the wrong shape. The whole update is rejected; nothing
// is persisted.
type InvalidFieldError struct {
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid progress field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid progress field %q", e.Field)
}

// ProgressOptions carries the optional creation parameters of a progress
// record. The zero value of State means active.
type ProgressOptions struct {
	State   models.ProgressState
	Current float64
	Message string
}

// ProgressService implements the progress notification protocol on top of the
// record store: creation with a bounded default lifetime, and validated
// updates that renew that lifetime.
//
// Concurrent updates to the same record are last-write-wins at the document
// level; the protocol assumes a single worker owns a given record. Callers
// needing stronger guarantees must layer their own concurrency token on top.
type ProgressService struct {
	store RecordStore
}

// NewProgressService creates a new progress service
func NewProgressService(store RecordStore) *ProgressService {
	return &ProgressService{store: store}
}

// CreateProgressRecord creates a "progress" type notification that can be
// updated anytime there is progress on some task. The title should not change
// over the course of the task (e.g. `Deleting folder "foo"`); total is the
// task's magnitude, where by convention total <= 0 means progress is
// indeterminate. Records that are not updated for over an hour are deleted.
func (s *ProgressService) CreateProgressRecord(ctx context.Context, userID primitive.ObjectID, title string, total float64, opts *ProgressOptions) (*models.Notification, error) {
	state := models.ProgressActive
	current := float64(0)
	message := ""
	if opts != nil {
		if opts.State != "" {
			state = opts.State
		}
		current = opts.Current
		message = opts.Message
	}

	now := time.Now()
	expires := now.Add(ProgressLifetime)

	notification := &models.Notification{
		Type:    models.NotificationTypeProgress,
		UserID:  userID,
		Data:    models.ProgressData(title, total, state, current, message),
		Time:    now,
		Expires: &expires,
	}

	return s.store.Create(ctx, notification)
}

// UpdateProgress overwrites fields of an existing progress record and renews
// its expiry. Allowed field names are exactly total, current, state and
// message; any other name fails the whole call with *InvalidFieldError and
// nothing is persisted. total and current must be numeric, but any value is
// meaningful (total <= 0 switches the record to indeterminate progress).
//
// The given record is not mutated; the updated version is returned. A
// repositories.ErrNotFound from the store means the record already expired
// and the caller should stop reporting.
func (s *ProgressService) UpdateProgress(ctx context.Context, record *models.Notification, fields map[string]interface{}) (*models.Notification, error) {
	// Validate every field name and shape before touching anything, so a
	// rejected update leaves the record exactly as it was.
	normalized := make(bson.M, len(fields))
	for name, value := range fields {
		switch name {
		case models.ProgressFieldTotal, models.ProgressFieldCurrent:
			number, ok := utils.AsFloat(value)
			if !ok {
				return nil, &InvalidFieldError{Field: name, Reason: "must be numeric"}
			}
			normalized[name] = number
		case models.ProgressFieldState, models.ProgressFieldMessage:
			normalized[name] = value
		default:
			return nil, &InvalidFieldError{Field: name}
		}
	}

	data := make(bson.M, len(record.Data))
	for name, value := range record.Data {
		data[name] = value
	}
	for name, value := range normalized {
		data[name] = value
	}

	expires := time.Now().Add(ProgressLifetime)

	updated := *record
	updated.Data = data
	updated.Expires = &expires

	if err := s.store.Update(ctx, &updated); err != nil {
		return nil, err
	}

	return &updated, nil
}
