package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/anonto42/socialshop/backend/pkg/changefeed"
)

const channelPrefix = "realtime:"

// RedisBridge publishes events to Redis so every instance sees every write,
// and feeds the events it receives into the local hub.
type RedisBridge struct {
	client *redis.Client
	hub    *Hub
	log    *zap.Logger
}

func NewRedisBridge(client *redis.Client, hub *Hub, log *zap.Logger) *RedisBridge {
	return &RedisBridge{client: client, hub: hub, log: log}
}

func channelFor(table string) string {
	return channelPrefix + table
}

// Publish sends ev to realtime:<table>. The local hub receives it back
// through Run, so it is not delivered locally here.
func (b *RedisBridge) Publish(ctx context.Context, ev changefeed.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, channelFor(ev.Table), payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", ev.Table, err)
	}
	return nil
}

// Run consumes realtime:* until ctx is done.
func (b *RedisBridge) Run(ctx context.Context) error {
	pubsub := b.client.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	// wait for the subscription to be confirmed before reporting ready
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("redis psubscribe: %w", err)
	}
	b.log.Info("Realtime bridge subscribed", zap.String("pattern", channelPrefix+"*"))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.dispatch(ctx, msg)
		}
	}
}

func (b *RedisBridge) dispatch(ctx context.Context, msg *redis.Message) {
	var ev changefeed.Event
	if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
		b.log.Warn("dropping malformed realtime payload", zap.String("channel", msg.Channel), zap.Error(err))
		return
	}
	if ev.Table == "" {
		ev.Table = strings.TrimPrefix(msg.Channel, channelPrefix)
	}
	_ = b.hub.Publish(ctx, ev)
}
