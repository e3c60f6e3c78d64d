package client

// http_client.go = handles HTTP client functionality for the manhwahubCLI application.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"manhwahub/internal/microservices/http-api/dto"
)

// HTTPClient talks to the notification API with a reader token
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// constructor for HTTP client
func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// set token for HTTP client
func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// UnreadCount calls GET /api/v1/notifications/unread-count
func (c *HTTPClient) UnreadCount(ctx context.Context) (int, error) {
	var resp dto.UnreadCountResponse
	if err := c.getJSON(ctx, "/api/v1/notifications/unread-count", &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// ListNotifications calls GET /api/v1/notifications
func (c *HTTPClient) ListNotifications(ctx context.Context) (*dto.NotificationListResponse, error) {
	var resp dto.NotificationListResponse
	if err := c.getJSON(ctx, "/api/v1/notifications", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	response, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer response.Body.Close() // Ensure the response body is closed

	if response.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(response.Body).Decode(&apiErr)
		if apiErr.Error != "" {
			return fmt.Errorf("request failed with status %s: %s", response.Status, apiErr.Error)
		}
		return fmt.Errorf("request failed with status: %s", response.Status)
	}
	return json.NewDecoder(response.Body).Decode(out)
}
