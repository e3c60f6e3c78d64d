package models

import (
	"errors"
	"time"
)

// NotificationType is one of the closed set of events a reader can be notified about.
type NotificationType string

const (
	NotificationCommentReply NotificationType = "comment_reply"
	NotificationLike         NotificationType = "like"
	NotificationMention      NotificationType = "mention"
)

// NotificationTypes lists every type in display order.
var NotificationTypes = []NotificationType{
	NotificationCommentReply,
	NotificationLike,
	NotificationMention,
}

// Valid reports whether t belongs to the closed set.
func (t NotificationType) Valid() bool {
	for _, known := range NotificationTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Actor references the user that triggered a notification.
type Actor struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Notification is one user-facing event. Read is the only field changed after creation.
type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"userId"`
	Type      NotificationType `json:"type"`
	FromUser  Actor            `json:"fromUser"`
	CommentID int64            `json:"commentId,omitempty"`
	ManhwaID  int64            `json:"manhwaId,omitempty"`
	ChapterID int64            `json:"chapterId,omitempty"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}

// NewNotification carries everything a producer supplies; id, read and createdAt are synthesized.
type NewNotification struct {
	UserID    int64            `json:"userId"`
	Type      NotificationType `json:"type"`
	FromUser  Actor            `json:"fromUser"`
	CommentID int64            `json:"commentId,omitempty"`
	ManhwaID  int64            `json:"manhwaId,omitempty"`
	ChapterID int64            `json:"chapterId,omitempty"`
	Message   string           `json:"message"`
}

// ErrInvalidType is returned when a type outside the closed set is named explicitly.
var ErrInvalidType = errors.New("invalid notification type")

// ParseNotificationType validates s against the closed set.
func ParseNotificationType(s string) (NotificationType, error) {
	t := NotificationType(s)
	if !t.Valid() {
		return "", ErrInvalidType
	}
	return t, nil
}
