package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manhwahub/internal/config"
	"manhwahub/internal/microservices/http-api/models"
	"manhwahub/internal/microservices/http-api/service"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := testConfig(config.DriverMemory)
	cfg.CreateRateLimit = 100
	cfg.CreateRateBurst = 100
	a, err := New(context.Background(), cfg, discardLogger(), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func do(t *testing.T, a *App, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.NewRouter().ServeHTTP(w, req)
	return w
}

func TestRouter_ProducerToReaderFlow(t *testing.T) {
	a := newTestApp(t)
	producer, err := a.Auth.IssueToken(1000, "comments-service", service.ScopeNotificationsWrite)
	require.NoError(t, err)
	reader, err := a.Auth.IssueToken(8, "reader")
	require.NoError(t, err)

	w := do(t, a, http.MethodPost, "/api/v1/internal/notifications", producer, map[string]any{
		"userId":   8,
		"type":     "mention",
		"fromUser": map[string]any{"id": 3, "name": "mina"},
		"message":  "mentioned you",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Notification
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = do(t, a, http.MethodGet, "/api/v1/notifications/unread-count", reader, nil)
	assert.JSONEq(t, `{"count":1}`, w.Body.String())

	w = do(t, a, http.MethodPut, "/api/v1/notifications/"+jsonID(created.ID)+"/read", reader, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, a, http.MethodGet, "/api/v1/notifications/unread-count", reader, nil)
	assert.JSONEq(t, `{"count":0}`, w.Body.String())
}

func TestRouter_SettingsGateProducer(t *testing.T) {
	a := newTestApp(t)
	producer, err := a.Auth.IssueToken(1000, "likes-service", service.ScopeNotificationsWrite)
	require.NoError(t, err)
	reader, err := a.Auth.IssueToken(8, "reader")
	require.NoError(t, err)

	w := do(t, a, http.MethodPost, "/api/v1/settings/toggle/types/like", reader, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, a, http.MethodPost, "/api/v1/internal/notifications", producer, map[string]any{
		"userId": 8, "type": "like", "message": "liked",
	})
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"created":false}`, w.Body.String())
}

func TestRouter_Scopes(t *testing.T) {
	a := newTestApp(t)
	reader, err := a.Auth.IssueToken(8, "reader")
	require.NoError(t, err)
	producer, err := a.Auth.IssueToken(1000, "svc", service.ScopeNotificationsWrite)
	require.NoError(t, err)

	w := do(t, a, http.MethodPost, "/api/v1/internal/notifications", reader, map[string]any{
		"userId": 8, "type": "like", "message": "liked",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, a, http.MethodGet, "/api/v1/notifications", producer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, a, http.MethodGet, "/api/v1/notifications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, a, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
