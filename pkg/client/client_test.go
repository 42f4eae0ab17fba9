package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/realtime"
	"github.com/anonto42/socialshop/backend/pkg/changefeed"
	"github.com/anonto42/socialshop/backend/pkg/retry"
)

func fastRetry() retry.Config {
	return retry.Config{MaxRetries: 3, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond, Multiplier: 1}
}

func writeEnvelope(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func ok(w http.ResponseWriter, data any) {
	writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

// realtimeEndpoint serves the change feed for userID off hub.
func realtimeEndpoint(hub *realtime.Hub, userID uint) http.HandlerFunc {
	upgrader := websocket.Upgrader{}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		realtime.NewSession(conn, hub, userID, realtime.DefaultPolicy, zap.NewNop()).Serve(r.Context())
	}
}

func publish(t *testing.T, hub *realtime.Hub, table string, typ changefeed.EventType, newRow, oldRow any) {
	t.Helper()
	ev, err := changefeed.NewEvent(table, typ, newRow, oldRow)
	require.NoError(t, err)
	require.NoError(t, hub.Publish(context.Background(), ev))
}

func TestAPIErrorCarriesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusNotFound, map[string]any{"success": false, "msg": "post not found"})
	}))
	defer srv.Close()

	_, err := New(srv.URL, "secret").PostDetails(context.Background(), "abc")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "post not found", apiErr.Message)
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeEnvelope(w, http.StatusServiceUnavailable, map[string]any{"success": false, "msg": "Internal server error"})
			return
		}
		ok(w, map[string]any{"count": 4})
	}))
	defer srv.Close()

	count, err := New(srv.URL, "t", WithRetry(fastRetry())).UnseenNotifications(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.EqualValues(t, 3, calls.Load())
}

func TestWritesAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeEnvelope(w, http.StatusInternalServerError, map[string]any{"success": false, "msg": "Internal server error"})
	}))
	defer srv.Close()

	err := New(srv.URL, "t", WithRetry(fastRetry())).LikePost(context.Background(), "abc")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.EqualValues(t, 1, calls.Load())
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeEnvelope(w, http.StatusUnauthorized, map[string]any{"success": false, "msg": "Invalid or expired token"})
	}))
	defer srv.Close()

	_, err := New(srv.URL, "t", WithRetry(fastRetry())).Feed(context.Background(), 1, 10)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.EqualValues(t, 1, calls.Load())
}

func TestSubscribeRejectedByPolicy(t *testing.T) {
	hub := realtime.NewHub(zap.NewNop())
	mux := http.NewServeMux()
	mux.Handle("/api/v1/realtime", realtimeEndpoint(hub, 7))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := New(srv.URL, "t").Subscribe(context.Background(), "notifications", "receiver_id=eq.8")
	assert.True(t, errors.Is(err, ErrSubscriptionRejected), "got %v", err)
}

func TestFeedViewReconciles(t *testing.T) {
	hub := realtime.NewHub(zap.NewNop())
	first := models.Post{ID: primitive.NewObjectID(), UserID: 2, Body: "first"}
	var likes atomic.Int64

	mux := http.NewServeMux()
	mux.Handle("/api/v1/realtime", realtimeEndpoint(hub, 7))
	mux.HandleFunc("/api/v1/feed", func(w http.ResponseWriter, r *http.Request) {
		ok(w, map[string]any{"posts": []models.FeedPost{{Post: first}}})
	})
	mux.HandleFunc("/api/v1/posts/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/posts/"+first.ID.Hex(), r.URL.Path)
		ok(w, models.PostDetails{FeedPost: models.FeedPost{Post: first, LikesCount: likes.Load()}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	view, err := New(srv.URL, "t").WatchFeed(ctx, 1, 10)
	require.NoError(t, err)
	defer view.Close()
	require.Equal(t, 1, view.Len())

	second := models.Post{ID: primitive.NewObjectID(), UserID: 3, Body: "second"}
	publish(t, hub, "posts", changefeed.Insert, second, nil)
	require.Eventually(t, func() bool { return view.Len() == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, second.ID, view.Snapshot()[0].ID)

	likes.Store(5)
	publish(t, hub, "likes", changefeed.Insert, models.Like{ID: 1, PostID: first.ID.Hex(), UserID: 7}, nil)
	require.Eventually(t, func() bool {
		items := view.Snapshot()
		return len(items) == 2 && items[1].LikesCount == 5
	}, 2*time.Second, 10*time.Millisecond)

	publish(t, hub, "posts", changefeed.Delete, nil, second)
	require.Eventually(t, func() bool { return view.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, first.ID, view.Snapshot()[0].ID)
}

func TestChatViewIsNewestFirst(t *testing.T) {
	hub := realtime.NewHub(zap.NewNop())
	conv := models.ConversationID(7, 9)
	history := []models.Message{
		{ID: 1, ConversationID: conv, SenderID: 7, ReceiverID: 9, Text: "hi"},
		{ID: 2, ConversationID: conv, SenderID: 9, ReceiverID: 7, Text: "hello"},
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/realtime", realtimeEndpoint(hub, 7))
	mux.HandleFunc("/api/v1/chats/9/messages", func(w http.ResponseWriter, r *http.Request) {
		ok(w, map[string]any{"conversation_id": conv, "messages": history})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	view, err := New(srv.URL, "t").WatchChat(context.Background(), 7, 9)
	require.NoError(t, err)
	defer view.Close()

	items := view.Snapshot()
	require.Len(t, items, 2)
	assert.EqualValues(t, 2, items[0].ID)

	publish(t, hub, "messages", changefeed.Insert, models.Message{ID: 3, ConversationID: "5_6", Text: "elsewhere"}, nil)
	publish(t, hub, "messages", changefeed.Insert, models.Message{ID: 4, ConversationID: conv, SenderID: 9, ReceiverID: 7, Text: "new"}, nil)
	require.Eventually(t, func() bool { return view.Len() == 3 }, 2*time.Second, 10*time.Millisecond)
	items = view.Snapshot()
	assert.EqualValues(t, 4, items[0].ID)
	assert.Equal(t, "new", items[0].Text)
}

func TestNotificationViewCountsUnseen(t *testing.T) {
	hub := realtime.NewHub(zap.NewNop())
	mux := http.NewServeMux()
	mux.Handle("/api/v1/realtime", realtimeEndpoint(hub, 7))
	mux.HandleFunc("/api/v1/notifications", func(w http.ResponseWriter, r *http.Request) {
		ok(w, map[string]any{"notifications": []models.NotificationWithSender{
			{Notification: models.Notification{ID: 1, ReceiverID: 7, Seen: true}},
		}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	view, err := New(srv.URL, "t").WatchNotifications(context.Background(), 7, 20)
	require.NoError(t, err)
	defer view.Close()
	assert.Zero(t, Unseen(view))

	publish(t, hub, "notifications", changefeed.Insert, models.Notification{ID: 2, ReceiverID: 8}, nil)
	publish(t, hub, "notifications", changefeed.Insert, models.Notification{ID: 3, ReceiverID: 7, Title: "New follower"}, nil)
	require.Eventually(t, func() bool { return view.Len() == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, Unseen(view))
	assert.Equal(t, "New follower", view.Snapshot()[0].Title)
}
