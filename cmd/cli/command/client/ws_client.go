package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gorilla/websocket"
)

// ws_client.go = follows the notification event feed over WebSocket.

// Event is one frame of the feed.
type Event struct {
	Type      string    `json:"type"`
	Event     string    `json:"event,omitempty"`
	Content   string    `json:"content,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// FeedURL turns the API base URL into the WebSocket feed URL.
func FeedURL(apiURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(apiURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid API URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	u.Path += "/api/v1/notifications/ws"
	return u.String(), nil
}

// Watch connects to the feed and calls onEvent for every frame until ctx ends
// or the server closes the connection.
func Watch(ctx context.Context, apiURL, token string, onEvent func(Event)) error {
	feed, err := FeedURL(apiURL)
	if err != nil {
		return err
	}

	// Connect with auth header
	header := http.Header{}
	header.Add("Authorization", "Bearer "+token)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, feed, header)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer conn.Close()

	// unblock ReadJSON when ctx ends
	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	})
	defer stop()

	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read failed: %w", err)
		}
		onEvent(ev)
	}
}

// PrintEvent pretty prints a feed frame; unread is the count fetched after the event.
func PrintEvent(w io.Writer, ev Event, unread int) {
	stamp := ev.Timestamp.Local().Format("15:04:05")
	switch ev.Type {
	case "system":
		color.New(color.FgYellow).Fprintf(w, "🔔 %s %s\n", stamp, ev.Content)
	case "event":
		c := color.New(color.FgCyan)
		switch ev.Event {
		case "notification-added":
			c = color.New(color.FgGreen, color.Bold)
		case "notification-settings-updated":
			c = color.New(color.FgMagenta)
		}
		c.Fprintf(w, "%s %-30s unread: %d\n", stamp, ev.Event, unread)
	default:
		color.New(color.FgHiBlack).Fprintf(w, "%s %s\n", stamp, ev.Type)
	}
}
