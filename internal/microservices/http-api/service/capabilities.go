package service

import "context"

// Change events. They carry no payload; subscribers re-query.
const (
	EventNotificationAdded   = "notification-added"
	EventNotificationUpdated = "notification-updated"
	EventSettingsUpdated     = "notification-settings-updated"
)

// Permission mirrors the platform desktop-notification permission states.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// SoundPlayer plays the short notification cue.
type SoundPlayer interface {
	Play(ctx context.Context) error
}

// DesktopNotifier raises a platform-level notification. The store only reads
// Permission; it never asks for it.
type DesktopNotifier interface {
	Permission() Permission
	Notify(ctx context.Context, title, body string) error
}

// ChangeBroadcaster fans a named change event out to subscribers. When ctx
// carries an event user (WithEventUser) only that user's subscribers get it.
type ChangeBroadcaster interface {
	Broadcast(ctx context.Context, event string)
}

type eventUserKey struct{}

// WithEventUser marks the events broadcast with ctx as belonging to userID.
func WithEventUser(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, eventUserKey{}, userID)
}

// EventUser returns the user an event belongs to. ok is false for events
// whose owner is unknown, such as changes picked up by a reload.
func EventUser(ctx context.Context) (userID int64, ok bool) {
	userID, ok = ctx.Value(eventUserKey{}).(int64)
	return userID, ok
}

type nopSoundPlayer struct{}

func (nopSoundPlayer) Play(context.Context) error { return nil }

type nopDesktopNotifier struct{}

func (nopDesktopNotifier) Permission() Permission { return PermissionDefault }

func (nopDesktopNotifier) Notify(context.Context, string, string) error { return nil }

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(context.Context, string) {}

// NopSoundPlayer, NopDesktopNotifier and NopBroadcaster stand in for disabled capabilities.
func NopSoundPlayer() SoundPlayer { return nopSoundPlayer{} }

func NopDesktopNotifier() DesktopNotifier { return nopDesktopNotifier{} }

func NopBroadcaster() ChangeBroadcaster { return nopBroadcaster{} }
