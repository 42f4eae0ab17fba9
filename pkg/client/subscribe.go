package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/anonto42/socialshop/backend/pkg/changefeed"
)

const subscribeTimeout = 10 * time.Second

// ErrSubscriptionRejected is returned when the server answers a subscribe
// with an error message.
var ErrSubscriptionRejected = errors.New("subscription rejected")

// Subscription is one topic on its own realtime socket.
type Subscription struct {
	Topic string

	conn   *websocket.Conn
	events chan changefeed.Event
	once   sync.Once
	log    *zap.Logger
}

// Events is closed when the socket drops, ctx is done or Close is called.
func (s *Subscription) Events() <-chan changefeed.Event {
	return s.events
}

// Close unsubscribes and closes the socket.
func (s *Subscription) Close() error {
	var err error
	s.once.Do(func() {
		_ = s.conn.WriteJSON(changefeed.ClientMessage{Action: changefeed.ActionUnsubscribe, Topic: s.Topic})
		err = s.conn.Close()
	})
	return err
}

func (c *Client) realtimeURL() string {
	u := c.baseURL + apiPrefix + "/realtime"
	switch {
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u
}

// Subscribe opens a socket and subscribes to changes on table matching filter
// ("column=eq.value", or empty). No events means every event type. It returns
// once the server has acknowledged the subscription.
func (c *Client) Subscribe(ctx context.Context, table, filter string, events ...changefeed.EventType) (*Subscription, error) {
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, c.realtimeURL(), header)
	if err != nil {
		if resp != nil {
			return nil, &APIError{Status: resp.StatusCode, Message: "websocket handshake failed"}
		}
		return nil, fmt.Errorf("dial realtime: %w", err)
	}

	topic := table
	if filter != "" {
		topic += ":" + filter
	}
	if err := conn.WriteJSON(changefeed.ClientMessage{
		Action: changefeed.ActionSubscribe,
		Topic:  topic,
		Table:  table,
		Filter: filter,
		Events: events,
	}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send subscribe: %w", err)
	}

	if err := awaitAck(conn, topic); err != nil {
		conn.Close()
		return nil, err
	}

	sub := &Subscription{
		Topic:  topic,
		conn:   conn,
		events: make(chan changefeed.Event, 64),
		log:    c.log.With(zap.String("topic", topic)),
	}
	go sub.readLoop(ctx)
	return sub, nil
}

func awaitAck(conn *websocket.Conn, topic string) error {
	if err := conn.SetReadDeadline(time.Now().Add(subscribeTimeout)); err != nil {
		return err
	}
	defer conn.SetReadDeadline(time.Time{})

	for {
		var msg changefeed.ServerMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("await ack: %w", err)
		}
		if msg.Topic != topic {
			continue
		}
		switch msg.Kind {
		case changefeed.KindAck:
			return nil
		case changefeed.KindError:
			return fmt.Errorf("%w: %s", ErrSubscriptionRejected, msg.Error)
		}
	}
}

func (s *Subscription) readLoop(ctx context.Context) {
	defer close(s.events)
	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	for {
		var msg changefeed.ServerMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) && ctx.Err() == nil {
				s.log.Debug("realtime socket closed", zap.Error(err))
			}
			return
		}
		if msg.Kind != changefeed.KindEvent || msg.Event == nil || msg.Topic != s.Topic {
			continue
		}
		select {
		case s.events <- *msg.Event:
		case <-ctx.Done():
			return
		}
	}
}
