package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"manhwahub/internal/microservices/http-api/models"
)

// NotificationRepository persists the whole notification log as one JSON array.
// Load returns the raw blob as well so callers can detect changes cheaply.
type NotificationRepository interface {
	Load(ctx context.Context) ([]models.Notification, []byte, error)
	Save(ctx context.Context, notifications []models.Notification) ([]byte, error)
}

type notificationRepository struct {
	kv KVStore
}

func NewNotificationRepository(kv KVStore) NotificationRepository {
	return &notificationRepository{kv: kv}
}

func (r *notificationRepository) Load(ctx context.Context) ([]models.Notification, []byte, error) {
	raw, err := r.kv.Get(ctx, NotificationsKey)
	if errors.Is(err, ErrKeyNotFound) {
		return []models.Notification{}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load notifications: %w", err)
	}

	var notifications []models.Notification
	if err := json.Unmarshal(raw, &notifications); err != nil {
		return nil, nil, fmt.Errorf("malformed notification log: %w", err)
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, raw, nil
}

func (r *notificationRepository) Save(ctx context.Context, notifications []models.Notification) ([]byte, error) {
	if notifications == nil {
		notifications = []models.Notification{}
	}
	raw, err := json.Marshal(notifications)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notifications: %w", err)
	}
	if err := r.kv.Set(ctx, NotificationsKey, raw); err != nil {
		return nil, fmt.Errorf("failed to save notifications: %w", err)
	}
	return raw, nil
}
