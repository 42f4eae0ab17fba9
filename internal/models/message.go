package models

import (
	"sort"
	"strconv"
	"time"
)

type Message struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ConversationID string    `json:"conversation_id" gorm:"index;size:64"`
	SenderID       uint      `json:"sender_id" gorm:"index"`
	ReceiverID     uint      `json:"receiver_id" gorm:"index"`
	Text           string    `json:"text" gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at" gorm:"index"`
	Seen           bool      `json:"seen" gorm:"-"`
}

// MessageSeen acknowledges a message for a viewer.
type MessageSeen struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	MessageID uint      `json:"message_id" gorm:"index;uniqueIndex:idx_message_viewer"`
	ViewerID  uint      `json:"viewer_id" gorm:"index;uniqueIndex:idx_message_viewer"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationID joins the two user ids sorted as strings, so both sides
// derive the same id.
func ConversationID(a, b uint) string {
	ids := []string{strconv.FormatUint(uint64(a), 10), strconv.FormatUint(uint64(b), 10)}
	sort.Strings(ids)
	return ids[0] + "_" + ids[1]
}

// ChatListItem is one row of the chat list: the latest message exchanged
// with a counterpart.
type ChatListItem struct {
	ConversationID string      `json:"conversation_id"`
	User           CompactUser `json:"user"`
	LastMessage    Message     `json:"last_message"`
	UnseenCount    int         `json:"unseen_count"`
}

type SendMessageRequest struct {
	Text string `json:"text" validate:"required,min=1,max=4000"`
}
