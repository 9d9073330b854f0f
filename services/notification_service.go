package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskpulse/taskpulse_backend/models"
	"github.com/taskpulse/taskpulse_backend/repositories"
)

// NotificationSink receives freshly written notifications for best-effort
// delivery to connected consumers. Implementations must not block; a missed
// delivery only delays the consumer until its next poll.
type NotificationSink interface {
	Deliver(ctx context.Context, notification *models.Notification)
}

// NotificationService wraps the notification repository and pushes every
// successful write into the delivery sink.
type NotificationService struct {
	repo *repositories.NotificationRepository
	sink NotificationSink
}

// NewNotificationService creates a new notification service. sink may be nil
// when no delivery transport is configured.
func NewNotificationService(repo *repositories.NotificationRepository, sink NotificationSink) *NotificationService {
	return &NotificationService{repo: repo, sink: sink}
}

// Create persists a new notification and fans it out
func (s *NotificationService) Create(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	stored, err := s.repo.Create(ctx, notification)
	if err != nil {
		return nil, err
	}

	if s.sink != nil {
		s.sink.Deliver(ctx, stored)
	}

	return stored, nil
}

// Update replaces a stored notification and fans out the new version
func (s *NotificationService) Update(ctx context.Context, notification *models.Notification) error {
	if err := s.repo.Update(ctx, notification); err != nil {
		return err
	}

	if s.sink != nil {
		s.sink.Deliver(ctx, notification)
	}

	return nil
}

// GetByID fetches a single notification
func (s *NotificationService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	return s.repo.GetByID(ctx, id)
}

// QueryByRecipient returns a cursor over the recipient's notifications in
// ascending time order, optionally limited to those created after since.
func (s *NotificationService) QueryByRecipient(ctx context.Context, userID primitive.ObjectID, since *time.Time) (*mongo.Cursor, error) {
	return s.repo.QueryByRecipient(ctx, userID, since)
}

// ListForRecipient returns the recipient's notifications in ascending time
// order, optionally limited to those created after since.
func (s *NotificationService) ListForRecipient(ctx context.Context, userID primitive.ObjectID, since *time.Time) ([]models.Notification, error) {
	return s.repo.ListByRecipient(ctx, userID, since)
}
