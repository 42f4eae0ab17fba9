package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/repositories"
	"github.com/anonto42/socialshop/backend/pkg/apperrors"
	"github.com/anonto42/socialshop/backend/pkg/unseen"
)

type ChatService struct {
	messages repositories.MessageRepository
	users    repositories.UserRepository
	notifier Notifier
	log      *zap.Logger
}

func NewChatService(msgRepo repositories.MessageRepository, userRepo repositories.UserRepository, notifier Notifier, log *zap.Logger) *ChatService {
	return &ChatService{
		messages: msgRepo,
		users:    userRepo,
		notifier: notifier,
		log:      log.With(zap.String("component", "chat")),
	}
}

// Send stores a message and notifies the receiver. A failed notification
// does not fail the send.
func (s *ChatService) Send(ctx context.Context, senderID, receiverID uint, text string) (*models.Message, error) {
	if senderID == receiverID {
		return nil, apperrors.Invalid("cannot message yourself")
	}
	sender, err := s.users.GetUserByID(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetUserByID(ctx, receiverID); err != nil {
		return nil, err
	}

	msg := &models.Message{
		ConversationID: models.ConversationID(senderID, receiverID),
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Text:           text,
	}
	if err := s.messages.CreateMessage(ctx, msg); err != nil {
		return nil, apperrors.Wrap(err, "failed to send message")
	}

	if s.notifier != nil {
		n := &models.Notification{
			SenderID:   senderID,
			ReceiverID: receiverID,
			Title:      sender.Name,
			Message:    text,
			Type:       models.NotificationChat,
			Data:       models.NotificationData{Text: text}.JSON(),
		}
		if _, err := s.notifier.Notify(ctx, n); err != nil {
			s.log.Warn("chat notification failed", zap.Uint("message_id", msg.ID), zap.Error(err))
		}
	}
	return msg, nil
}

// History returns the conversation between viewer and other, oldest first.
// Seen is set from the receiving side's acknowledgements.
func (s *ChatService) History(ctx context.Context, viewerID, otherID uint, skip, limit int) ([]models.Message, error) {
	list, err := s.messages.GetConversation(ctx, models.ConversationID(viewerID, otherID), skip, limit)
	if err != nil {
		return nil, err
	}

	var received, sent []uint
	for _, m := range list {
		if m.ReceiverID == viewerID {
			received = append(received, m.ID)
		} else {
			sent = append(sent, m.ID)
		}
	}
	ackedByViewer, err := s.messages.AckedIDs(ctx, viewerID, received)
	if err != nil {
		return nil, err
	}
	ackedByOther, err := s.messages.AckedIDs(ctx, otherID, sent)
	if err != nil {
		return nil, err
	}
	viewerSet, otherSet := unseen.Set(ackedByViewer), unseen.Set(ackedByOther)
	for i := range list {
		if list[i].ReceiverID == viewerID {
			list[i].Seen = unseen.Seen(viewerSet, list[i].ID)
		} else {
			list[i].Seen = unseen.Seen(otherSet, list[i].ID)
		}
	}
	return list, nil
}

// ChatList returns one row per counterpart, ordered by the latest message.
func (s *ChatService) ChatList(ctx context.Context, viewerID uint) ([]models.ChatListItem, error) {
	list, err := s.messages.GetInvolving(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	items := []models.ChatListItem{}
	index := map[string]int{}
	counterparts := []uint{}
	receivedByConv := map[string][]uint{}
	var received []uint

	for _, m := range list {
		other := m.SenderID
		if other == viewerID {
			other = m.ReceiverID
		}
		if m.ReceiverID == viewerID {
			receivedByConv[m.ConversationID] = append(receivedByConv[m.ConversationID], m.ID)
			received = append(received, m.ID)
		}
		if _, ok := index[m.ConversationID]; ok {
			continue
		}
		index[m.ConversationID] = len(items)
		counterparts = append(counterparts, other)
		items = append(items, models.ChatListItem{
			ConversationID: m.ConversationID,
			User:           models.CompactUser{ID: other},
			LastMessage:    m,
		})
	}
	if len(items) == 0 {
		return items, nil
	}

	users, err := s.users.GetUsersByIDs(ctx, counterparts)
	if err != nil {
		return nil, err
	}
	acked, err := s.messages.AckedIDs(ctx, viewerID, received)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if u, ok := users[items[i].User.ID]; ok {
			items[i].User = u.ToCompact()
		}
		items[i].UnseenCount = unseen.Count(receivedByConv[items[i].ConversationID], acked)
	}
	return items, nil
}

func (s *ChatService) UnseenCount(ctx context.Context, viewerID, otherID uint) (int, error) {
	all, err := s.messages.ReceivedIDs(ctx, models.ConversationID(viewerID, otherID), viewerID)
	if err != nil {
		return 0, err
	}
	acked, err := s.messages.AckedIDs(ctx, viewerID, all)
	if err != nil {
		return 0, err
	}
	return unseen.Count(all, acked), nil
}

// MarkSeen acknowledges every message other sent to viewer and returns how
// many were newly acknowledged.
func (s *ChatService) MarkSeen(ctx context.Context, viewerID, otherID uint) (int, error) {
	all, err := s.messages.ReceivedIDs(ctx, models.ConversationID(viewerID, otherID), viewerID)
	if err != nil {
		return 0, err
	}
	acked, err := s.messages.AckedIDs(ctx, viewerID, all)
	if err != nil {
		return 0, err
	}
	pending := unseen.Unseen(all, acked)
	if err := s.messages.MarkSeen(ctx, viewerID, pending); err != nil {
		return 0, err
	}
	return len(pending), nil
}
