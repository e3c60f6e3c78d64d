package dto

import (
	"manhwahub/internal/microservices/http-api/models"
)

// CreateNotificationRequest: producer payload for POST /internal/notifications.
// The type is not validated here; types outside the closed set are refused by the store.
// Any integer is a valid user key and the message is opaque, capped at 500 bytes.
type CreateNotificationRequest struct {
	UserID    int64        `json:"userId"`
	Type      string       `json:"type" binding:"required"`
	FromUser  models.Actor `json:"fromUser"`
	CommentID int64        `json:"commentId"`
	ManhwaID  int64        `json:"manhwaId"`
	ChapterID int64        `json:"chapterId"`
	Message   string       `json:"message" binding:"max=500"`
}

func (r CreateNotificationRequest) ToModel() models.NewNotification {
	return models.NewNotification{
		UserID:    r.UserID,
		Type:      models.NotificationType(r.Type),
		FromUser:  r.FromUser,
		CommentID: r.CommentID,
		ManhwaID:  r.ManhwaID,
		ChapterID: r.ChapterID,
		Message:   r.Message,
	}
}

// NotificationListResponse: GET /notifications
type NotificationListResponse struct {
	Notifications []models.Notification `json:"notifications"`
	Total         int                   `json:"total"`
	Unread        int                   `json:"unread"`
}

func NewNotificationListResponse(list []models.Notification) NotificationListResponse {
	unread := 0
	for _, n := range list {
		if !n.Read {
			unread++
		}
	}
	return NotificationListResponse{Notifications: list, Total: len(list), Unread: unread}
}

// UnreadCountResponse: GET /notifications/unread-count
type UnreadCountResponse struct {
	Count int `json:"count"`
}

// NotRecordedResponse: the producer request was accepted but refused by the owner's settings
type NotRecordedResponse struct {
	Created bool `json:"created"`
}
