package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"manhwahub/internal/microservices/http-api/models"
	"manhwahub/internal/microservices/http-api/repository"
)

// NotificationService owns the persisted notification log of every user.
// The log is kept newest first; every mutation rewrites the whole blob.
type NotificationService interface {
	CreateNotification(ctx context.Context, input models.NewNotification) (models.Notification, bool, error)
	GetNotifications(ctx context.Context, userID int64) ([]models.Notification, error)
	GetUnreadCount(ctx context.Context, userID int64) (int, error)
	MarkAsRead(ctx context.Context, notificationID int64) error
	MarkAllAsRead(ctx context.Context, userID int64) error
	DeleteNotification(ctx context.Context, notificationID int64) error
	ClearAll(ctx context.Context, userID int64) error
	Reload(ctx context.Context) (bool, error)
}

// NotificationDeps groups the capabilities injected into the notification service.
// Nil fields fall back to no-op implementations.
type NotificationDeps struct {
	Settings    NotificationSettingsService
	Sound       SoundPlayer
	Desktop     DesktopNotifier
	Broadcaster ChangeBroadcaster
	Logger      *slog.Logger
	Now         func() time.Time
}

type notificationService struct {
	repo        repository.NotificationRepository
	settings    NotificationSettingsService
	sound       SoundPlayer
	desktop     DesktopNotifier
	broadcaster ChangeBroadcaster
	logger      *slog.Logger
	now         func() time.Time

	mu     sync.Mutex
	log    []models.Notification
	raw    []byte
	lastID int64
}

// NewNotificationService hydrates the log once. A malformed stored blob is
// returned as an error rather than repaired.
func NewNotificationService(ctx context.Context, repo repository.NotificationRepository, deps NotificationDeps) (NotificationService, error) {
	if deps.Settings == nil {
		return nil, errors.New("notification service requires a settings service")
	}
	log, raw, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	s := &notificationService{
		repo:        repo,
		settings:    deps.Settings,
		sound:       deps.Sound,
		desktop:     deps.Desktop,
		broadcaster: deps.Broadcaster,
		logger:      deps.Logger,
		now:         deps.Now,
		log:         log,
		raw:         raw,
	}
	if s.sound == nil {
		s.sound = NopSoundPlayer()
	}
	if s.desktop == nil {
		s.desktop = NopDesktopNotifier()
	}
	if s.broadcaster == nil {
		s.broadcaster = NopBroadcaster()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.lastID = maxID(log)
	return s, nil
}

// CreateNotification admits input if the owner's settings allow its type.
// A refused notification is reported with created=false and a nil error.
func (s *notificationService) CreateNotification(ctx context.Context, input models.NewNotification) (models.Notification, bool, error) {
	settings, err := s.settings.GetSettings(ctx, input.UserID)
	if err != nil {
		return models.Notification{}, false, err
	}
	if !settings.Allows(input.Type) {
		s.logger.Debug("notification dropped by settings", "user_id", input.UserID, "type", input.Type)
		return models.Notification{}, false, nil
	}

	s.mu.Lock()
	now := s.now()
	n := models.Notification{
		ID:        s.nextIDLocked(now),
		UserID:    input.UserID,
		Type:      input.Type,
		FromUser:  input.FromUser,
		CommentID: input.CommentID,
		ManhwaID:  input.ManhwaID,
		ChapterID: input.ChapterID,
		Message:   input.Message,
		Read:      false,
		CreatedAt: now,
	}

	next := make([]models.Notification, 0, len(s.log)+1)
	next = append(next, n)
	next = append(next, s.log...)
	if err := s.persistLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return models.Notification{}, false, err
	}
	s.mu.Unlock()

	s.broadcaster.Broadcast(WithEventUser(ctx, n.UserID), EventNotificationAdded)
	s.alert(ctx, settings, n)
	return n, true, nil
}

// alert fires the sound and desktop side effects. Failures are logged and dropped.
func (s *notificationService) alert(ctx context.Context, settings models.NotificationSettings, n models.Notification) {
	if settings.Sound {
		if err := s.sound.Play(ctx); err != nil {
			s.logger.Debug("notification sound failed", "error", err)
		}
	}
	if settings.Desktop && s.desktop.Permission() == PermissionGranted {
		if err := s.desktop.Notify(ctx, n.FromUser.Name, n.Message); err != nil {
			s.logger.Debug("desktop notification failed", "error", err)
		}
	}
}

func (s *notificationService) GetNotifications(_ context.Context, userID int64) ([]models.Notification, error) {
	s.mu.Lock()
	out := make([]models.Notification, 0)
	for _, n := range s.log {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *notificationService) GetUnreadCount(_ context.Context, userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.log {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

// MarkAsRead is a no-op for unknown or already read ids.
func (s *notificationService) MarkAsRead(ctx context.Context, notificationID int64) error {
	s.mu.Lock()
	idx := -1
	for i, n := range s.log {
		if n.ID == notificationID {
			idx = i
			break
		}
	}
	if idx < 0 || s.log[idx].Read {
		s.mu.Unlock()
		return nil
	}

	next := cloneLog(s.log)
	next[idx].Read = true
	if err := s.persistLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	owner := next[idx].UserID
	s.mu.Unlock()

	s.broadcaster.Broadcast(WithEventUser(ctx, owner), EventNotificationUpdated)
	return nil
}

// MarkAllAsRead writes and broadcasts only when at least one record changed.
func (s *notificationService) MarkAllAsRead(ctx context.Context, userID int64) error {
	s.mu.Lock()
	next := cloneLog(s.log)
	changed := false
	for i := range next {
		if next[i].UserID == userID && !next[i].Read {
			next[i].Read = true
			changed = true
		}
	}
	if !changed {
		s.mu.Unlock()
		return nil
	}
	if err := s.persistLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.broadcaster.Broadcast(WithEventUser(ctx, userID), EventNotificationUpdated)
	return nil
}

// DeleteNotification persists and broadcasts even when nothing matched.
func (s *notificationService) DeleteNotification(ctx context.Context, notificationID int64) error {
	return s.removeWhere(ctx, func(n models.Notification) bool {
		return n.ID == notificationID
	})
}

// ClearAll persists and broadcasts even when the user had nothing.
func (s *notificationService) ClearAll(ctx context.Context, userID int64) error {
	return s.removeWhere(WithEventUser(ctx, userID), func(n models.Notification) bool {
		return n.UserID == userID
	})
}

// removeWhere scopes the broadcast to the owner of the first removed record
// unless ctx is already scoped. With no match and no scope it reaches everyone.
func (s *notificationService) removeWhere(ctx context.Context, match func(models.Notification) bool) error {
	s.mu.Lock()
	next := make([]models.Notification, 0, len(s.log))
	owner, found := int64(0), false
	for _, n := range s.log {
		if match(n) {
			if !found {
				owner, found = n.UserID, true
			}
			continue
		}
		next = append(next, n)
	}
	if err := s.persistLocked(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	if _, scoped := EventUser(ctx); found && !scoped {
		ctx = WithEventUser(ctx, owner)
	}

	s.broadcaster.Broadcast(ctx, EventNotificationUpdated)
	return nil
}

// Reload re-reads the stored log and reports whether another writer changed it.
// Load runs under the lock so no write can land between Load and the swap.
func (s *notificationService) Reload(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, raw, err := s.repo.Load(ctx)
	if err != nil {
		return false, err
	}
	if bytes.Equal(raw, s.raw) {
		return false, nil
	}
	s.log = log
	s.raw = raw
	if id := maxID(log); id > s.lastID {
		s.lastID = id
	}
	return true, nil
}

// nextIDLocked returns a millisecond timestamp bumped past the last issued id,
// so ids stay unique and creation-ordered within the process.
func (s *notificationService) nextIDLocked(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *notificationService) persistLocked(ctx context.Context, next []models.Notification) error {
	raw, err := s.repo.Save(ctx, next)
	if err != nil {
		return fmt.Errorf("persist notifications: %w", err)
	}
	s.log = next
	s.raw = raw
	return nil
}

func cloneLog(log []models.Notification) []models.Notification {
	out := make([]models.Notification, len(log))
	copy(out, log)
	return out
}

func maxID(log []models.Notification) int64 {
	var highest int64
	for _, n := range log {
		if n.ID > highest {
			highest = n.ID
		}
	}
	return highest
}
