package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"manhwahub/internal/microservices/http-api/middleware"
	"manhwahub/internal/microservices/http-api/models"
)

// MockNotificationService mocks the NotificationService interface
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) CreateNotification(ctx context.Context, input models.NewNotification) (models.Notification, bool, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(models.Notification), args.Bool(1), args.Error(2)
}

func (m *MockNotificationService) GetNotifications(ctx context.Context, userID int64) ([]models.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockNotificationService) GetUnreadCount(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationService) MarkAsRead(ctx context.Context, notificationID int64) error {
	return m.Called(ctx, notificationID).Error(0)
}

func (m *MockNotificationService) MarkAllAsRead(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockNotificationService) DeleteNotification(ctx context.Context, notificationID int64) error {
	return m.Called(ctx, notificationID).Error(0)
}

func (m *MockNotificationService) ClearAll(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockNotificationService) Reload(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// MockSettingsService mocks the NotificationSettingsService interface
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) settings(args mock.Arguments) (models.NotificationSettings, error) {
	return args.Get(0).(models.NotificationSettings), args.Error(1)
}

func (m *MockSettingsService) GetSettings(ctx context.Context, userID int64) (models.NotificationSettings, error) {
	return m.settings(m.Called(ctx, userID))
}

func (m *MockSettingsService) UpdateSettings(ctx context.Context, userID int64, patch models.SettingsPatch) (models.NotificationSettings, error) {
	return m.settings(m.Called(ctx, userID, patch))
}

func (m *MockSettingsService) ToggleType(ctx context.Context, userID int64, t models.NotificationType) (models.NotificationSettings, error) {
	return m.settings(m.Called(ctx, userID, t))
}

func (m *MockSettingsService) ToggleEnabled(ctx context.Context, userID int64) (models.NotificationSettings, error) {
	return m.settings(m.Called(ctx, userID))
}

func (m *MockSettingsService) ToggleSound(ctx context.Context, userID int64) (models.NotificationSettings, error) {
	return m.settings(m.Called(ctx, userID))
}

func (m *MockSettingsService) ToggleDesktop(ctx context.Context, userID int64) (models.NotificationSettings, error) {
	return m.settings(m.Called(ctx, userID))
}

func (m *MockSettingsService) IsTypeEnabled(ctx context.Context, userID int64, t models.NotificationType) (bool, error) {
	args := m.Called(ctx, userID, t)
	return args.Bool(0), args.Error(1)
}

func (m *MockSettingsService) Reload(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// newTestRouter returns a router whose requests are authenticated as userID
func newTestRouter(userID int64) (*gin.Engine, *gin.RouterGroup) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1", func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Next()
	})
	return router, api
}
