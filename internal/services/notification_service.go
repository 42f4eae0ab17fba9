package services

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/internal/push"
	"github.com/anonto42/socialshop/backend/internal/repositories"
	"github.com/anonto42/socialshop/backend/pkg/apperrors"
	"github.com/anonto42/socialshop/backend/pkg/unseen"
)

// groupedLimit bounds how many recent notifications the grouped view loads.
const groupedLimit = 200

// Notifier stores a notification and pushes it to the receiver's device.
type Notifier interface {
	Notify(ctx context.Context, n *models.Notification) (pushed bool, err error)
}

type NotificationService struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	sender        push.Sender
	log           *zap.Logger
}

func NewNotificationService(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository, sender push.Sender, log *zap.Logger) *NotificationService {
	if sender == nil {
		sender = push.NoopSender{Log: log}
	}
	return &NotificationService{
		notifications: notifRepo,
		users:         userRepo,
		sender:        sender,
		log:           log.With(zap.String("component", "notifications")),
	}
}

// Notify inserts n and pushes it when the receiver has a device token.
// Notifications addressed to their own sender are dropped.
func (s *NotificationService) Notify(ctx context.Context, n *models.Notification) (bool, error) {
	if n.SenderID == n.ReceiverID {
		return false, nil
	}
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		return false, apperrors.Wrap(err, "failed to store notification")
	}

	receiver, err := s.users.GetUserByID(ctx, n.ReceiverID)
	if err != nil {
		s.log.Warn("receiver lookup failed", zap.Uint("receiver_id", n.ReceiverID), zap.Error(err))
		return false, nil
	}
	if receiver.PushToken == "" {
		return false, nil
	}

	data := map[string]string{
		"type":            n.Type,
		"notification_id": strconv.FormatUint(uint64(n.ID), 10),
		"sender_id":       strconv.FormatUint(uint64(n.SenderID), 10),
	}
	if detail, err := n.ParseData(); err == nil && detail.PostID != "" {
		data["post_id"] = detail.PostID
	}
	msg := push.Message{Token: receiver.PushToken, Title: n.Title, Body: n.Message, Data: data}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.log.Warn("push delivery failed", zap.Uint("notification_id", n.ID), zap.Error(err))
		return false, nil
	}
	return true, nil
}

// NotifyAsync runs Notify on a detached context so the caller's request can finish first.
func (s *NotificationService) NotifyAsync(n *models.Notification) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := s.Notify(ctx, n); err != nil {
			s.log.Error("notify failed", zap.String("type", n.Type), zap.Error(err))
		}
	}()
}

func (s *NotificationService) enrich(ctx context.Context, viewerID uint, list []models.Notification) ([]models.NotificationWithSender, error) {
	out := make([]models.NotificationWithSender, 0, len(list))
	if len(list) == 0 {
		return out, nil
	}

	ids := make([]uint, len(list))
	senderIDs := make([]uint, 0, len(list))
	for i, n := range list {
		ids[i] = n.ID
		senderIDs = append(senderIDs, n.SenderID)
	}
	acked, err := s.notifications.AckedIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}
	senders, err := s.users.GetUsersByIDs(ctx, senderIDs)
	if err != nil {
		return nil, err
	}

	ackSet := unseen.Set(acked)
	for _, n := range list {
		detail, err := n.ParseData()
		if err != nil {
			return nil, err
		}
		n.Seen = unseen.Seen(ackSet, n.ID)
		item := models.NotificationWithSender{Notification: n, Detail: detail}
		if sender, ok := senders[n.SenderID]; ok {
			item.Sender = sender.ToCompact()
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *NotificationService) List(ctx context.Context, viewerID uint, page, limit int) ([]models.NotificationWithSender, int64, error) {
	list, total, err := s.notifications.GetByReceiverID(ctx, viewerID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	enriched, err := s.enrich(ctx, viewerID, list)
	return enriched, total, err
}

func (s *NotificationService) Grouped(ctx context.Context, viewerID uint, now time.Time) (models.GroupedNotifications, error) {
	list, _, err := s.notifications.GetByReceiverID(ctx, viewerID, 1, groupedLimit)
	if err != nil {
		return models.GroupedNotifications{}, err
	}
	enriched, err := s.enrich(ctx, viewerID, list)
	if err != nil {
		return models.GroupedNotifications{}, err
	}
	return GroupByAge(enriched, now), nil
}

// GroupByAge buckets notifications by calendar day relative to now, in now's location.
func GroupByAge(list []models.NotificationWithSender, now time.Time) models.GroupedNotifications {
	g := models.GroupedNotifications{
		Today:     []models.NotificationWithSender{},
		Yesterday: []models.NotificationWithSender{},
		ThisWeek:  []models.NotificationWithSender{},
		Older:     []models.NotificationWithSender{},
	}
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfYesterday := startOfToday.AddDate(0, 0, -1)
	startOfWeek := startOfToday.AddDate(0, 0, -7)

	for _, n := range list {
		created := n.CreatedAt.In(now.Location())
		switch {
		case !created.Before(startOfToday):
			g.Today = append(g.Today, n)
		case !created.Before(startOfYesterday):
			g.Yesterday = append(g.Yesterday, n)
		case !created.Before(startOfWeek):
			g.ThisWeek = append(g.ThisWeek, n)
		default:
			g.Older = append(g.Older, n)
		}
	}
	return g
}

func (s *NotificationService) UnseenCount(ctx context.Context, viewerID uint) (int, error) {
	all, err := s.notifications.IDsForReceiver(ctx, viewerID)
	if err != nil {
		return 0, err
	}
	acked, err := s.notifications.AckedIDs(ctx, viewerID, all)
	if err != nil {
		return 0, err
	}
	return unseen.Count(all, acked), nil
}

// MarkSeen acknowledges one notification. Only its receiver may do so.
func (s *NotificationService) MarkSeen(ctx context.Context, viewerID, notificationID uint) error {
	n, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.ReceiverID != viewerID {
		return apperrors.Forbidden("not your notification")
	}
	return s.notifications.MarkSeen(ctx, viewerID, []uint{notificationID})
}

func (s *NotificationService) MarkAllSeen(ctx context.Context, viewerID uint) (int, error) {
	all, err := s.notifications.IDsForReceiver(ctx, viewerID)
	if err != nil {
		return 0, err
	}
	acked, err := s.notifications.AckedIDs(ctx, viewerID, all)
	if err != nil {
		return 0, err
	}
	pending := unseen.Unseen(all, acked)
	if err := s.notifications.MarkSeen(ctx, viewerID, pending); err != nil {
		return 0, err
	}
	return len(pending), nil
}
