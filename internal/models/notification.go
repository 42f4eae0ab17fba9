package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/anonto42/socialshop/backend/pkg/apperrors"
)

const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
	NotificationChat    = "chat"
)

type Notification struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	SenderID   uint           `json:"sender_id" gorm:"index"`
	ReceiverID uint           `json:"receiver_id" gorm:"index"`
	Title      string         `json:"title"`
	Message    string         `json:"message"`
	Data       datatypes.JSON `json:"data"`
	Type       string         `json:"type" gorm:"size:30;index"`
	CreatedAt  time.Time      `json:"created_at" gorm:"index"`
	Seen       bool           `json:"seen" gorm:"-"`
}

// NotificationSeen acknowledges a notification for a viewer.
type NotificationSeen struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	NotificationID uint      `json:"notification_id" gorm:"index;uniqueIndex:idx_notification_viewer"`
	ViewerID       uint      `json:"viewer_id" gorm:"index;uniqueIndex:idx_notification_viewer"`
	CreatedAt      time.Time `json:"created_at"`
}

// NotificationData is the typed payload carried in Notification.Data.
type NotificationData struct {
	PostID    string `json:"post_id,omitempty"`
	CommentID uint   `json:"comment_id,omitempty"`
	Text      string `json:"text,omitempty"`
}

func (d NotificationData) JSON() datatypes.JSON {
	b, _ := json.Marshal(d)
	return datatypes.JSON(b)
}

// ParseData decodes Data. Unknown fields and malformed JSON are ErrInvalidPayload.
func (n *Notification) ParseData() (NotificationData, error) {
	var d NotificationData
	if len(n.Data) == 0 || string(n.Data) == "null" {
		return d, nil
	}
	dec := json.NewDecoder(bytes.NewReader(n.Data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return NotificationData{}, fmt.Errorf("notification %d: %w: %v", n.ID, apperrors.ErrInvalidPayload, err)
	}
	return d, nil
}

type NotificationWithSender struct {
	Notification
	Sender CompactUser      `json:"sender"`
	Detail NotificationData `json:"detail"`
}

type GroupedNotifications struct {
	Today     []NotificationWithSender `json:"today"`
	Yesterday []NotificationWithSender `json:"yesterday"`
	ThisWeek  []NotificationWithSender `json:"this_week"`
	Older     []NotificationWithSender `json:"older"`
}
