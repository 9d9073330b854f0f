package websocket

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskpulse/taskpulse_backend/models"
)

const channelPrefix = "notifications:"

func channelForUser(userID primitive.ObjectID) string {
	return channelPrefix + userID.Hex()
}

// RedisFanout publishes freshly written notifications to a per-user Redis
// channel so that whichever instance holds the user's WebSocket can forward
// them. Publishing is best effort; a dropped message only delays the consumer
// until its next poll.
type RedisFanout struct {
	client *redis.Client
}

// NewRedisFanout creates a new Redis fanout publisher
func NewRedisFanout(client *redis.Client) *RedisFanout {
	return &RedisFanout{client: client}
}

// Deliver publishes the notification to the recipient's channel
func (f *RedisFanout) Deliver(ctx context.Context, notification *models.Notification) {
	payload, err := json.Marshal(notification)
	if err != nil {
		log.Printf("Error marshaling notification %s for fanout: %v", notification.ID.Hex(), err)
		return
	}

	if err := f.client.Publish(ctx, channelForUser(notification.UserID), payload).Err(); err != nil {
		log.Printf("Error publishing notification %s to Redis: %v", notification.ID.Hex(), err)
	}
}

// ListenRedis subscribes the hub to all notification channels and forwards
// incoming notifications to locally connected users. It blocks until ctx is
// cancelled, so run it in a goroutine.
func (h *Hub) ListenRedis(ctx context.Context, client *redis.Client) {
	pubsub := client.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}

			userID, err := primitive.ObjectIDFromHex(strings.TrimPrefix(msg.Channel, channelPrefix))
			if err != nil {
				log.Printf("Error parsing user id from channel %s: %v", msg.Channel, err)
				continue
			}

			var notification models.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &notification); err != nil {
				log.Printf("Error unmarshaling fanout notification: %v", err)
				continue
			}

			// Not connected here is the normal case on a multi-instance
			// deployment; another instance holds the socket.
			_ = h.SendToUser(userID, notification)
		}
	}
}
