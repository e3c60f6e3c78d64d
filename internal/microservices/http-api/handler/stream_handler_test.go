package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"manhwahub/internal/microservices/events"
	"manhwahub/internal/microservices/http-api/service"
)

type stubSubscriber struct {
	ch           chan events.Event
	unsubscribed chan struct{}
	userID       int64
}

func (s *stubSubscriber) Subscribe(userID int64) (<-chan events.Event, func()) {
	s.userID = userID
	return s.ch, func() { close(s.unsubscribed) }
}

func TestStream_RelaysEvents(t *testing.T) {
	sub := &stubSubscriber{ch: make(chan events.Event, 2), unsubscribed: make(chan struct{})}
	router, api := newTestRouter(12)
	NewStreamHandler(sub, time.Hour).RegisterRoutes(api)

	sub.ch <- events.Event{Name: "notification-added", UserID: 12, Scoped: true}
	sub.ch <- events.Event{Name: "notification-settings-updated"}
	close(sub.ch)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/stream", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	body := w.Body.String()
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, ": ok\n\n"))
	assert.Contains(t, body, "event: notification-added\ndata: {}\n\n")
	assert.Contains(t, body, "event: notification-settings-updated\n")
	assert.Equal(t, int64(12), sub.userID)
	<-sub.unsubscribed
}

func TestStream_Unauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sub := &stubSubscriber{ch: make(chan events.Event), unsubscribed: make(chan struct{})}
	router := gin.New()
	NewStreamHandler(sub, time.Hour).RegisterRoutes(router.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/stream", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, sub.userID)
}

func TestStream_OnlyOwnEvents(t *testing.T) {
	hub := events.NewHub()
	router, api := newTestRouter(12)
	NewStreamHandler(hub, time.Hour).RegisterRoutes(api)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/stream", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		router.ServeHTTP(w, req)
		close(done)
	}()

	assert.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)
	hub.Broadcast(service.WithEventUser(context.Background(), 13), service.EventNotificationAdded)
	hub.Broadcast(service.WithEventUser(context.Background(), 12), service.EventSettingsUpdated)
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := w.Body.String()
	assert.Contains(t, body, "event: notification-settings-updated\n")
	assert.NotContains(t, body, "notification-added")
}

func TestStream_StopsOnDisconnect(t *testing.T) {
	sub := &stubSubscriber{ch: make(chan events.Event), unsubscribed: make(chan struct{})}
	router, api := newTestRouter(1)
	NewStreamHandler(sub, time.Hour).RegisterRoutes(api)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/stream", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		router.ServeHTTP(w, req)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stream did not end after client disconnect")
	}
	<-sub.unsubscribed
}
