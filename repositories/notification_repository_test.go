package repositories

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestRecipientFilter(t *testing.T) {
	userID := primitive.NewObjectID()

	filter := recipientFilter(userID, nil)
	if !reflect.DeepEqual(filter, bson.M{"userId": userID}) {
		t.Errorf("filter = %v, want userId only", filter)
	}

	since := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	filter = recipientFilter(userID, &since)
	want := bson.M{
		"userId": userID,
		"time":   bson.M{"$gt": since},
	}
	if !reflect.DeepEqual(filter, want) {
		t.Errorf("filter = %v, want %v", filter, want)
	}
}

func TestRecipientFindOptions_SortsByTimeAscending(t *testing.T) {
	opts := recipientFindOptions()

	wantSort := bson.D{{Key: "time", Value: 1}}
	if !reflect.DeepEqual(opts.Sort, wantSort) {
		t.Errorf("Sort = %v, want %v", opts.Sort, wantSort)
	}
}

func TestWrapStorageErr_Connectivity(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"deadline", context.DeadlineExceeded, ErrStorageUnavailable},
		{"disconnected", mongo.ErrClientDisconnected, ErrStorageUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wrapStorageErr("insert notification", tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("wrapStorageErr(%v) = %v, want wrapping %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestWrapStorageErr_Passthrough(t *testing.T) {
	plain := errors.New("document failed validation")

	got := wrapStorageErr("insert notification", plain)
	if errors.Is(got, ErrStorageUnavailable) {
		t.Errorf("wrapStorageErr(%v) = %v, should not claim storage is unavailable", plain, got)
	}
	if !errors.Is(got, plain) {
		t.Errorf("wrapStorageErr(%v) = %v, should wrap the original error", plain, got)
	}
}
