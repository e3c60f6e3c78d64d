package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"manhwahub/internal/config"
	"manhwahub/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuth() service.AuthService {
	return service.NewAuthService(&config.Config{JWTSecret: strings.Repeat("m", 32), JWTExpiry: time.Hour})
}

func setupRouter(auth service.AuthService, extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	handlers := append([]gin.HandlerFunc{AuthMiddleware(auth)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	router.GET("/me", handlers...)
	return router
}

func TestAuthMiddleware(t *testing.T) {
	auth := newAuth()
	token, err := auth.IssueToken(42, "reader")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{name: "valid bearer", header: "Bearer " + token, want: http.StatusOK},
		{name: "query fallback", query: "?token=" + token, want: http.StatusOK},
		{name: "missing", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + token, want: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer nope", want: http.StatusUnauthorized},
	}

	router := setupRouter(auth)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.JSONEq(t, `{"user_id":42}`, w.Body.String())
			}
		})
	}
}

func TestRequireScopes(t *testing.T) {
	auth := newAuth()
	router := setupRouter(auth, RequireScopes(service.ScopeNotificationsWrite))

	readOnly, err := auth.IssueToken(1, "r")
	require.NoError(t, err)
	writer, err := auth.IssueToken(2, "w", service.ScopeNotificationsWrite)
	require.NoError(t, err)
	wildcard, err := auth.IssueToken(3, "x", "notifications:*")
	require.NoError(t, err)

	for token, want := range map[string]int{
		readOnly: http.StatusForbidden,
		writer:   http.StatusOK,
		wildcard: http.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code)
	}
}

func TestHasAllScopes(t *testing.T) {
	assert.True(t, hasAllScopes([]string{"*"}, []string{"anything"}))
	assert.True(t, hasAllScopes([]string{"a", "b"}, []string{"a", "b"}))
	assert.False(t, hasAllScopes([]string{"a"}, []string{"a", "b"}))
	assert.True(t, hasAllScopes(nil, nil))
}
