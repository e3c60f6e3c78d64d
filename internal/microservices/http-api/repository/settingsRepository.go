package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"manhwahub/internal/microservices/http-api/models"
)

// SettingsRepository persists the userId -> settings table as one JSON object
// keyed by the stringified user id.
type SettingsRepository interface {
	Load(ctx context.Context) (map[int64]models.NotificationSettings, []byte, error)
	Save(ctx context.Context, table map[int64]models.NotificationSettings) ([]byte, error)
}

type settingsRepository struct {
	kv KVStore
}

func NewSettingsRepository(kv KVStore) SettingsRepository {
	return &settingsRepository{kv: kv}
}

func (r *settingsRepository) Load(ctx context.Context) (map[int64]models.NotificationSettings, []byte, error) {
	table := make(map[int64]models.NotificationSettings)

	raw, err := r.kv.Get(ctx, SettingsKey)
	if errors.Is(err, ErrKeyNotFound) {
		return table, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load notification settings: %w", err)
	}

	var stored map[string]models.NotificationSettings
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, nil, fmt.Errorf("malformed notification settings: %w", err)
	}
	for key, settings := range stored {
		userID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("malformed notification settings key %q: %w", key, err)
		}
		table[userID] = settings
	}
	return table, raw, nil
}

func (r *settingsRepository) Save(ctx context.Context, table map[int64]models.NotificationSettings) ([]byte, error) {
	stored := make(map[string]models.NotificationSettings, len(table))
	for userID, settings := range table {
		stored[strconv.FormatInt(userID, 10)] = settings
	}
	// encoding/json sorts map keys, so equal tables encode to equal bytes
	raw, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notification settings: %w", err)
	}
	if err := r.kv.Set(ctx, SettingsKey, raw); err != nil {
		return nil, fmt.Errorf("failed to save notification settings: %w", err)
	}
	return raw, nil
}
