package websocket

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manhwahub/internal/microservices/events"
	"manhwahub/internal/microservices/http-api/middleware"
	"manhwahub/internal/microservices/http-api/service"
)

func newTestServer(t *testing.T, hub *events.Hub) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws", func(c *gin.Context) {
		c.Set(middleware.ContextUserID, int64(11))
		c.Next()
	}, WSHandler(hub, nil))

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
}

func readMessage(t *testing.T, conn *websocket.Conn) *Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	msg, err := MessageFromJSON(data)
	require.NoError(t, err)
	return msg
}

func TestWSHandler_RelaysHubEvents(t *testing.T) {
	hub := events.NewHub()
	url := newTestServer(t, hub)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	welcome := readMessage(t, conn)
	assert.Equal(t, TypeSystem, welcome.Type)

	hub.Broadcast(t.Context(), "notification-added")
	msg := readMessage(t, conn)
	assert.Equal(t, TypeEvent, msg.Type)
	assert.Equal(t, "notification-added", msg.Event)
}

func TestWSHandler_SkipsOtherUsersEvents(t *testing.T) {
	hub := events.NewHub()
	url := newTestServer(t, hub)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	readMessage(t, conn)

	hub.Broadcast(service.WithEventUser(t.Context(), 12), service.EventNotificationAdded)
	hub.Broadcast(service.WithEventUser(t.Context(), 11), service.EventSettingsUpdated)

	msg := readMessage(t, conn)
	assert.Equal(t, service.EventSettingsUpdated, msg.Event)
}

func TestWSHandler_UnsubscribesOnDisconnect(t *testing.T) {
	hub := events.NewHub()
	url := newTestServer(t, hub)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	readMessage(t, conn)
	require.Equal(t, 1, hub.Count())

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestWSHandler_RequiresUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws", WSHandler(events.NewHub(), nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/ws", nil))
	assert.Equal(t, 401, w.Code)
}
