// Package realtime fans row change events out to subscribers, in process and
// across instances through Redis pub/sub.
package realtime

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/anonto42/socialshop/backend/pkg/changefeed"
)

const defaultBuffer = 64

// Publisher is used by repositories after a successful write.
type Publisher interface {
	Publish(ctx context.Context, ev changefeed.Event) error
}

// Hub is a single-process registry of subscriptions keyed by table.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	buffer int
	log    *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		subs:   make(map[string]map[*Subscription]struct{}),
		buffer: defaultBuffer,
		log:    log,
	}
}

// Subscription receives the events of one table that pass its filter.
type Subscription struct {
	hub    *Hub
	table  string
	filter changefeed.Filter
	types  map[changefeed.EventType]bool
	ch     chan changefeed.Event
	once   sync.Once
}

// Subscribe registers interest in table. No types, or changefeed.Any, means
// every event type.
func (h *Hub) Subscribe(table string, filter changefeed.Filter, types ...changefeed.EventType) *Subscription {
	s := &Subscription{
		hub:    h,
		table:  table,
		filter: filter,
		ch:     make(chan changefeed.Event, h.buffer),
	}
	for _, t := range types {
		if t == changefeed.Any {
			s.types = nil
			break
		}
		if s.types == nil {
			s.types = make(map[changefeed.EventType]bool)
		}
		s.types[t] = true
	}

	h.mu.Lock()
	if h.subs[table] == nil {
		h.subs[table] = make(map[*Subscription]struct{})
	}
	h.subs[table][s] = struct{}{}
	h.mu.Unlock()

	activeSubscriptions.Inc()
	return s
}

// Events is closed once the subscription is closed.
func (s *Subscription) Events() <-chan changefeed.Event {
	return s.ch
}

func (s *Subscription) Table() string { return s.table }

func (s *Subscription) Filter() changefeed.Filter { return s.filter }

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		if set := h.subs[s.table]; set != nil {
			delete(set, s)
			if len(set) == 0 {
				delete(h.subs, s.table)
			}
		}
		// close under the write lock so Publish never sends on a closed channel
		close(s.ch)
		h.mu.Unlock()
		activeSubscriptions.Dec()
	})
}

func (s *Subscription) wants(ev changefeed.Event) bool {
	if s.types != nil && !s.types[ev.Type] {
		return false
	}
	return s.filter.Match(ev)
}

// Publish delivers ev to every matching subscriber of its table. A full
// subscriber buffer drops the event for that subscriber only.
func (h *Hub) Publish(_ context.Context, ev changefeed.Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	eventsPublished.WithLabelValues(ev.Table, string(ev.Type)).Inc()
	for s := range h.subs[ev.Table] {
		if !s.wants(ev) {
			continue
		}
		select {
		case s.ch <- ev:
			eventsDelivered.WithLabelValues(ev.Table).Inc()
		default:
			eventsDropped.WithLabelValues(ev.Table).Inc()
			h.log.Warn("subscriber buffer full, dropping event",
				zap.String("table", ev.Table),
				zap.String("filter", s.filter.String()))
		}
	}
	return nil
}

// SubscriberCount returns the number of live subscriptions on table.
func (h *Hub) SubscriberCount(table string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[table])
}

// Emit builds an event and hands it to pub. Publishing is best effort: the
// write already happened, so a failure is logged and swallowed.
func Emit(ctx context.Context, pub Publisher, log *zap.Logger, table string, typ changefeed.EventType, newRow, oldRow any) {
	if pub == nil {
		return
	}
	ev, err := changefeed.NewEvent(table, typ, newRow, oldRow)
	if err == nil {
		err = pub.Publish(ctx, ev)
	}
	if err != nil && log != nil {
		log.Error("failed to publish change event",
			zap.String("table", table),
			zap.String("type", string(typ)),
			zap.Error(err))
	}
}
