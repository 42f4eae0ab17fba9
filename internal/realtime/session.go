package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/anonto42/socialshop/backend/pkg/apperrors"
	"github.com/anonto42/socialshop/backend/pkg/changefeed"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	outboundBuffer = 128
)

var errBadAction = errors.New("action must be subscribe or unsubscribe")

// Session multiplexes topic subscriptions over one websocket connection.
// Every subscription it opened is closed when Serve returns.
type Session struct {
	conn   *websocket.Conn
	hub    *Hub
	userID uint
	policy Policy
	log    *zap.Logger

	out  chan changefeed.ServerMessage
	done chan struct{}

	mu     sync.Mutex
	topics map[string]*Subscription
	wg     sync.WaitGroup
}

func NewSession(conn *websocket.Conn, hub *Hub, userID uint, policy Policy, log *zap.Logger) *Session {
	if policy == nil {
		policy = DefaultPolicy
	}
	return &Session{
		conn:   conn,
		hub:    hub,
		userID: userID,
		policy: policy,
		log:    log.With(zap.Uint("user_id", userID)),
		out:    make(chan changefeed.ServerMessage, outboundBuffer),
		done:   make(chan struct{}),
		topics: make(map[string]*Subscription),
	}
}

// Serve blocks until the client disconnects or ctx is done.
func (s *Session) Serve(ctx context.Context) {
	activeSessions.Inc()
	defer activeSessions.Dec()

	ctx, cancel := context.WithCancel(ctx)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(ctx)
		cancel()
	}()

	s.readLoop(ctx)
	cancel()

	close(s.done)
	s.closeAll()
	s.wg.Wait()
	<-writerDone
	_ = s.conn.Close()
}

func (s *Session) readLoop(ctx context.Context) {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg changefeed.ClientMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("realtime read failed", zap.Error(err))
			}
			return
		}
		if ctx.Err() != nil {
			return
		}

		var err error
		switch msg.Action {
		case changefeed.ActionSubscribe:
			err = s.subscribe(msg)
		case changefeed.ActionUnsubscribe:
			err = s.unsubscribe(msg.Topic)
		default:
			err = errBadAction
		}
		if err != nil {
			s.send(ctx, changefeed.ServerMessage{Kind: changefeed.KindError, Topic: msg.Topic, Error: apperrors.GetMessage(err)})
			continue
		}
		s.send(ctx, changefeed.ServerMessage{Kind: changefeed.KindAck, Topic: msg.Topic})
	}
}

func (s *Session) subscribe(msg changefeed.ClientMessage) error {
	if msg.Topic == "" || msg.Table == "" {
		return apperrors.Invalid("topic and table are required")
	}
	filter, err := changefeed.ParseFilter(msg.Filter)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
	}
	if err := s.policy(s.userID, msg.Table, filter); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.topics[msg.Topic]; exists {
		return apperrors.Wrap(apperrors.ErrConflict, "topic "+msg.Topic+" is already subscribed")
	}
	sub := s.hub.Subscribe(msg.Table, filter, msg.Events...)
	s.topics[msg.Topic] = sub

	s.wg.Add(1)
	go s.forward(msg.Topic, sub)
	return nil
}

func (s *Session) unsubscribe(topic string) error {
	s.mu.Lock()
	sub, ok := s.topics[topic]
	delete(s.topics, topic)
	s.mu.Unlock()
	if !ok {
		return apperrors.NotFound("topic " + topic)
	}
	sub.Close()
	return nil
}

func (s *Session) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for topic, sub := range s.topics {
		sub.Close()
		delete(s.topics, topic)
	}
}

func (s *Session) forward(topic string, sub *Subscription) {
	defer s.wg.Done()
	for ev := range sub.Events() {
		ev := ev
		select {
		case s.out <- changefeed.ServerMessage{Kind: changefeed.KindEvent, Topic: topic, Event: &ev}:
		case <-s.done:
			return
		}
	}
}

func (s *Session) send(ctx context.Context, msg changefeed.ServerMessage) {
	select {
	case s.out <- msg:
	case <-ctx.Done():
	}
}

func (s *Session) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			_ = s.conn.Close()
			return
		case msg := <-s.out:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(msg); err != nil {
				s.log.Debug("realtime write failed", zap.Error(err))
				_ = s.conn.Close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = s.conn.Close()
				return
			}
		}
	}
}
