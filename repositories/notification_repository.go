package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskpulse/taskpulse_backend/config"
	"github.com/taskpulse/taskpulse_backend/models"
)

var (
	// ErrNotFound is returned when an operation targets a notification id
	// that no longer exists, typically because it already expired.
	ErrNotFound = errors.New("notification not found")

	// ErrStorageUnavailable is returned when the storage backend is
	// unreachable or timed out. Retry policy belongs to the caller.
	ErrStorageUnavailable = errors.New("notification storage unavailable")
)

const queryTimeout = 10 * time.Second

// NotificationRepository persists notification documents in the notifications
// collection. It is agnostic of the data payload's shape; payload validation
// belongs to the type-specific services on top of it.
type NotificationRepository struct {
	collection *mongo.Collection
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *mongo.Client) *NotificationRepository {
	return &NotificationRepository{
		collection: config.GetCollection(db, "notifications"),
	}
}

// Create assigns an id to the notification, persists it and returns the
// stored record. Time is stamped here if the caller left it zero.
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	if notification.Time.IsZero() {
		notification.Time = time.Now()
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, notification)
	if err != nil {
		return nil, wrapStorageErr("insert notification", err)
	}

	return notification, nil
}

// Update replaces the stored document with the given notification. It fails
// with ErrNotFound when the id no longer matches anything, which happens
// routinely when an update races with TTL expiry.
func (r *NotificationRepository) Update(ctx context.Context, notification *models.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": notification.ID}, notification)
	if err != nil {
		return wrapStorageErr("replace notification", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("replace notification %s: %w", notification.ID.Hex(), ErrNotFound)
	}

	return nil
}

// GetByID fetches a single notification by its id
func (r *NotificationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var notification models.Notification
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&notification)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("find notification %s: %w", id.Hex(), ErrNotFound)
		}
		return nil, wrapStorageErr("find notification", err)
	}

	return &notification, nil
}

// QueryByRecipient returns a cursor over the recipient's notifications in
// ascending time order, optionally limited to those created after since.
// Each call runs a fresh query against current store state. The cursor lives
// as long as ctx does, so the caller controls its lifetime.
func (r *NotificationRepository) QueryByRecipient(ctx context.Context, userID primitive.ObjectID, since *time.Time) (*mongo.Cursor, error) {
	cursor, err := r.collection.Find(ctx, recipientFilter(userID, since), recipientFindOptions())
	if err != nil {
		return nil, wrapStorageErr("query notifications", err)
	}

	return cursor, nil
}

// ListByRecipient is a convenience wrapper around QueryByRecipient that
// decodes the full result set.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, userID primitive.ObjectID, since *time.Time) ([]models.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.QueryByRecipient(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	notifications := []models.Notification{}
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, wrapStorageErr("decode notifications", err)
	}

	return notifications, nil
}

func recipientFilter(userID primitive.ObjectID, since *time.Time) bson.M {
	filter := bson.M{"userId": userID}
	if since != nil {
		filter["time"] = bson.M{"$gt": *since}
	}
	return filter
}

func recipientFindOptions() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "time", Value: 1}})
}

// wrapStorageErr maps connectivity failures onto ErrStorageUnavailable so
// callers can detect them with errors.Is. Other driver errors pass through
// wrapped with the failing operation.
func wrapStorageErr(op string, err error) error {
	if isConnectivityErr(err) {
		return fmt.Errorf("%s: %v: %w", op, err, ErrStorageUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isConnectivityErr(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, mongo.ErrClientDisconnected) {
		return true
	}
	return mongo.IsTimeout(err) || mongo.IsNetworkError(err)
}
