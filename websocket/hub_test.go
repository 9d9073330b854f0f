package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskpulse/taskpulse_backend/models"
)

func TestHub_SendToUser_NotConnected(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	err := hub.SendToUser(primitive.NewObjectID(), models.Notification{})
	if err == nil {
		t.Error("SendToUser should fail for a user with no connections")
	}
}

func TestHub_SendToUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	userID := primitive.NewObjectID()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(&Client{ID: uuid.NewString(), UserID: userID, Conn: conn})
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := gorilla.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	notification := models.Notification{
		ID:     primitive.NewObjectID(),
		Type:   models.NotificationTypeProgress,
		UserID: userID,
		Data:   bson.M{"title": "Deleting folder"},
		Time:   time.Now(),
	}

	// Registration runs through the hub's event loop, so retry briefly
	// until the client is visible.
	deadline := time.Now().Add(2 * time.Second)
	for {
		err = hub.SendToUser(userID, notification)
		if err == nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("SendToUser: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var received models.Notification
	if err := conn.ReadJSON(&received); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	if received.ID != notification.ID {
		t.Errorf("received ID = %s, want %s", received.ID.Hex(), notification.ID.Hex())
	}
	if received.Type != models.NotificationTypeProgress {
		t.Errorf("received Type = %q, want %q", received.Type, models.NotificationTypeProgress)
	}
	if received.Data["title"] != "Deleting folder" {
		t.Errorf("received title = %v, want %q", received.Data["title"], "Deleting folder")
	}
}
