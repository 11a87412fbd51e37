package notify

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swasthya/healthlog-platform/pkg/logging"
)

func newTestStore(t *testing.T, limit int) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, limit, time.Hour)
}

func TestServiceNotifyAndRecent(t *testing.T) {
	store := newTestStore(t, 50)
	svc := NewService(store, nil, logging.New("error"))
	ctx := context.Background()

	require.NoError(t, svc.Notify(ctx, "user-1", "metric recorded", SeveritySuccess))
	require.NoError(t, svc.Notify(ctx, "user-1", "sync failed", SeverityError))
	require.NoError(t, svc.Notify(ctx, "user-2", "welcome", SeverityInfo))

	recent, err := svc.Recent(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "sync failed", recent[0].Message, "newest first")
	assert.Equal(t, SeverityError, recent[0].Severity)

	other, err := svc.Recent(ctx, "user-2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestServiceNormalizesUnknownSeverity(t *testing.T) {
	store := newTestStore(t, 50)
	svc := NewService(store, nil, logging.New("error"))

	require.NoError(t, svc.Notify(context.Background(), "user-1", "hello", "fatal"))
	recent, err := svc.Recent(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, SeverityInfo, recent[0].Severity)
}

func TestRedisStoreCapsHistory(t *testing.T) {
	store := newTestStore(t, 3)
	svc := NewService(store, nil, logging.New("error"))
	ctx := context.Background()

	for _, msg := range []string{"one", "two", "three", "four", "five"} {
		require.NoError(t, svc.Notify(ctx, "user-1", msg, SeverityInfo))
	}

	recent, err := svc.Recent(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "five", recent[0].Message)
	assert.Equal(t, "three", recent[2].Message)
}

func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()
	ch := hub.Subscribe("user-1")
	defer hub.Unsubscribe("user-1", ch)

	hub.Publish(Notification{UserID: "user-1", Message: "ping"})
	hub.Publish(Notification{UserID: "user-2", Message: "not mine"})

	select {
	case n := <-ch:
		assert.Equal(t, "ping", n.Message)
	case <-time.After(time.Second):
		t.Fatal("expected a delivered notification")
	}
	select {
	case n := <-ch:
		t.Fatalf("unexpected cross-user delivery: %+v", n)
	default:
	}
}

func TestHubSlowSubscriberDrops(t *testing.T) {
	hub := NewHub()
	ch := hub.Subscribe("user-1")
	defer hub.Unsubscribe("user-1", ch)

	// Overfill the buffer; Publish must not block.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			hub.Publish(Notification{UserID: "user-1", Message: "flood"})
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}
}

func TestServicePublishesToHub(t *testing.T) {
	store := newTestStore(t, 50)
	hub := NewHub()
	svc := NewService(store, hub, logging.New("error"))

	ch := hub.Subscribe("user-1")
	defer hub.Unsubscribe("user-1", ch)

	require.NoError(t, svc.Notify(context.Background(), "user-1", "live", SeverityInfo))
	select {
	case n := <-ch:
		assert.Equal(t, "live", n.Message)
		assert.NotEmpty(t, n.ID)
	case <-time.After(time.Second):
		t.Fatal("expected live delivery")
	}
}
