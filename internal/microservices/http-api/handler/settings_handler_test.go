package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"manhwahub/internal/microservices/http-api/models"
)

func newSettingsRouter(svc *MockSettingsService, userID int64) *gin.Engine {
	router, api := newTestRouter(userID)
	NewSettingsHandler(svc).RegisterRoutes(api)
	return router
}

func TestGetSettings(t *testing.T) {
	svc := new(MockSettingsService)
	svc.On("GetSettings", mock.Anything, int64(5)).Return(models.DefaultNotificationSettings(5), nil)

	w := serve(newSettingsRouter(svc, 5), http.MethodGet, "/api/v1/settings", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"userId": 5,
		"enabled": true,
		"types": {"comment_reply": true, "like": true, "mention": true},
		"sound": false,
		"desktop": false
	}`, w.Body.String())
}

func TestUpdateSettings(t *testing.T) {
	svc := new(MockSettingsService)
	on := true
	want := models.SettingsPatch{
		Sound: &on,
		Types: map[models.NotificationType]bool{models.NotificationLike: false},
	}
	result := want.Apply(models.DefaultNotificationSettings(5))
	svc.On("UpdateSettings", mock.Anything, int64(5), want).Return(result, nil)

	w := serve(newSettingsRouter(svc, 5), http.MethodPatch, "/api/v1/settings", map[string]any{
		"sound": true,
		"types": map[string]bool{"like": false},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sound":true`)
	svc.AssertExpectations(t)
}

func TestUpdateSettings_UnknownType(t *testing.T) {
	svc := new(MockSettingsService)

	w := serve(newSettingsRouter(svc, 5), http.MethodPatch, "/api/v1/settings", map[string]any{
		"types": map[string]bool{"follow": true},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "UpdateSettings", mock.Anything, mock.Anything, mock.Anything)
}

func TestToggleRoutes(t *testing.T) {
	settings := models.DefaultNotificationSettings(5)
	tests := []struct {
		path   string
		method string
		args   []any
	}{
		{"/api/v1/settings/toggle/enabled", "ToggleEnabled", []any{mock.Anything, int64(5)}},
		{"/api/v1/settings/toggle/sound", "ToggleSound", []any{mock.Anything, int64(5)}},
		{"/api/v1/settings/toggle/desktop", "ToggleDesktop", []any{mock.Anything, int64(5)}},
		{"/api/v1/settings/toggle/types/mention", "ToggleType", []any{mock.Anything, int64(5), models.NotificationMention}},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			svc := new(MockSettingsService)
			svc.On(tt.method, tt.args...).Return(settings, nil)

			w := serve(newSettingsRouter(svc, 5), http.MethodPost, tt.path, nil)

			assert.Equal(t, http.StatusOK, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestToggleType_Unknown(t *testing.T) {
	svc := new(MockSettingsService)

	w := serve(newSettingsRouter(svc, 5), http.MethodPost, "/api/v1/settings/toggle/types/follow", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), models.ErrInvalidType.Error())
}

func TestToggleType_ServiceRejection(t *testing.T) {
	svc := new(MockSettingsService)
	svc.On("ToggleType", mock.Anything, int64(5), models.NotificationLike).
		Return(models.NotificationSettings{}, fmt.Errorf("%w: %q", models.ErrInvalidType, "like"))

	w := serve(newSettingsRouter(svc, 5), http.MethodPost, "/api/v1/settings/toggle/types/like", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}
