package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"manhwahub/internal/microservices/http-api/models"
	"manhwahub/internal/microservices/http-api/repository"
)

// NotificationSettingsService owns per-user notification preferences.
// A user without a record gets the defaults, written back on first access.
type NotificationSettingsService interface {
	GetSettings(ctx context.Context, userID int64) (models.NotificationSettings, error)
	UpdateSettings(ctx context.Context, userID int64, patch models.SettingsPatch) (models.NotificationSettings, error)
	ToggleType(ctx context.Context, userID int64, t models.NotificationType) (models.NotificationSettings, error)
	ToggleEnabled(ctx context.Context, userID int64) (models.NotificationSettings, error)
	ToggleSound(ctx context.Context, userID int64) (models.NotificationSettings, error)
	ToggleDesktop(ctx context.Context, userID int64) (models.NotificationSettings, error)
	IsTypeEnabled(ctx context.Context, userID int64, t models.NotificationType) (bool, error)
	Reload(ctx context.Context) (bool, error)
}

type notificationSettingsService struct {
	repo        repository.SettingsRepository
	broadcaster ChangeBroadcaster
	logger      *slog.Logger

	mu    sync.Mutex
	table map[int64]models.NotificationSettings
	raw   []byte // last blob read or written
}

// NewNotificationSettingsService hydrates the settings table once. A malformed
// stored blob is returned as an error rather than repaired.
func NewNotificationSettingsService(
	ctx context.Context,
	repo repository.SettingsRepository,
	broadcaster ChangeBroadcaster,
	logger *slog.Logger,
) (NotificationSettingsService, error) {
	table, raw, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if broadcaster == nil {
		broadcaster = NopBroadcaster()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &notificationSettingsService{
		repo:        repo,
		broadcaster: broadcaster,
		logger:      logger,
		table:       table,
		raw:         raw,
	}, nil
}

func (s *notificationSettingsService) GetSettings(ctx context.Context, userID int64) (models.NotificationSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.getLocked(ctx, userID)
	if err != nil {
		return models.NotificationSettings{}, err
	}
	return settings.Clone(), nil
}

// getLocked returns the stored record or materializes the defaults. Caller holds mu.
func (s *notificationSettingsService) getLocked(ctx context.Context, userID int64) (models.NotificationSettings, error) {
	if settings, ok := s.table[userID]; ok {
		return settings, nil
	}

	defaults := models.DefaultNotificationSettings(userID)
	next := s.cloneTable()
	next[userID] = defaults
	if err := s.persistLocked(ctx, next); err != nil {
		return models.NotificationSettings{}, err
	}
	s.logger.Debug("created default notification settings", "user_id", userID)
	return defaults, nil
}

// UpdateSettings merges patch into the user's record. Types outside the closed
// set are rejected with models.ErrInvalidType and nothing is written.
func (s *notificationSettingsService) UpdateSettings(ctx context.Context, userID int64, patch models.SettingsPatch) (models.NotificationSettings, error) {
	for t := range patch.Types {
		if !t.Valid() {
			return models.NotificationSettings{}, fmt.Errorf("%w: %q", models.ErrInvalidType, t)
		}
	}
	return s.update(ctx, userID, func(current models.NotificationSettings) models.NotificationSettings {
		return patch.Apply(current)
	})
}

func (s *notificationSettingsService) ToggleType(ctx context.Context, userID int64, t models.NotificationType) (models.NotificationSettings, error) {
	if !t.Valid() {
		return models.NotificationSettings{}, fmt.Errorf("%w: %q", models.ErrInvalidType, t)
	}
	return s.update(ctx, userID, func(current models.NotificationSettings) models.NotificationSettings {
		next := current.Clone()
		next.Types[t] = !current.Types[t]
		return next
	})
}

func (s *notificationSettingsService) ToggleEnabled(ctx context.Context, userID int64) (models.NotificationSettings, error) {
	return s.update(ctx, userID, func(current models.NotificationSettings) models.NotificationSettings {
		next := current.Clone()
		next.Enabled = !current.Enabled
		return next
	})
}

func (s *notificationSettingsService) ToggleSound(ctx context.Context, userID int64) (models.NotificationSettings, error) {
	return s.update(ctx, userID, func(current models.NotificationSettings) models.NotificationSettings {
		next := current.Clone()
		next.Sound = !current.Sound
		return next
	})
}

func (s *notificationSettingsService) ToggleDesktop(ctx context.Context, userID int64) (models.NotificationSettings, error) {
	return s.update(ctx, userID, func(current models.NotificationSettings) models.NotificationSettings {
		next := current.Clone()
		next.Desktop = !current.Desktop
		return next
	})
}

// update applies fn to the current record, persists the table and broadcasts.
func (s *notificationSettingsService) update(
	ctx context.Context,
	userID int64,
	fn func(models.NotificationSettings) models.NotificationSettings,
) (models.NotificationSettings, error) {
	s.mu.Lock()
	current, err := s.getLocked(ctx, userID)
	if err != nil {
		s.mu.Unlock()
		return models.NotificationSettings{}, err
	}

	updated := fn(current)
	updated.UserID = userID
	next := s.cloneTable()
	next[userID] = updated
	if err := s.persistLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return models.NotificationSettings{}, err
	}
	s.mu.Unlock()

	s.broadcaster.Broadcast(WithEventUser(ctx, userID), EventSettingsUpdated)
	return updated.Clone(), nil
}

func (s *notificationSettingsService) IsTypeEnabled(ctx context.Context, userID int64, t models.NotificationType) (bool, error) {
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return false, err
	}
	return settings.Allows(t), nil
}

// Reload re-reads the stored table and reports whether it differs from what
// this instance last saw.
func (s *notificationSettingsService) Reload(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, raw, err := s.repo.Load(ctx)
	if err != nil {
		return false, err
	}
	if bytes.Equal(raw, s.raw) {
		return false, nil
	}
	s.table = table
	s.raw = raw
	return true, nil
}

// persistLocked writes next and swaps it in only after the write succeeds.
func (s *notificationSettingsService) persistLocked(ctx context.Context, next map[int64]models.NotificationSettings) error {
	raw, err := s.repo.Save(ctx, next)
	if err != nil {
		return fmt.Errorf("persist notification settings: %w", err)
	}
	s.table = next
	s.raw = raw
	return nil
}

func (s *notificationSettingsService) cloneTable() map[int64]models.NotificationSettings {
	next := make(map[int64]models.NotificationSettings, len(s.table)+1)
	for k, v := range s.table {
		next[k] = v
	}
	return next
}
