// Package push delivers device notifications.
package push

import (
	"context"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"

	"github.com/anonto42/socialshop/backend/pkg/retry"
)

type Message struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

// Sender delivers a message to a single device token.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// FCMSender sends through Firebase Cloud Messaging with retries on
// transient failures.
type FCMSender struct {
	client *messaging.Client
	log    *zap.Logger
	retry  retry.Config
}

func NewFCMSender(client *messaging.Client, log *zap.Logger) *FCMSender {
	return &FCMSender{client: client, log: log, retry: retry.DefaultConfig()}
}

func (s *FCMSender) Send(ctx context.Context, msg Message) error {
	m := &messaging.Message{
		Token: msg.Token,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
	}
	return retry.Do(ctx, s.log, "fcm.send", func() error {
		_, err := s.client.Send(ctx, m)
		if err != nil && (messaging.IsUnregistered(err) || messaging.IsInvalidArgument(err)) {
			return retry.Permanent(err)
		}
		return err
	}, s.retry)
}

// NoopSender logs instead of sending; used when Firebase is not configured.
type NoopSender struct {
	Log *zap.Logger
}

func (s NoopSender) Send(_ context.Context, msg Message) error {
	if s.Log != nil {
		s.Log.Debug("push disabled, dropping message", zap.String("title", msg.Title))
	}
	return nil
}
