// Package reconcile keeps an in-memory ordered list consistent with a
// change feed without refetching the whole list.
//
// Patch policy:
//   - INSERT prepends the decoded row (an id already present is ignored);
//   - DELETE filters the row out by id;
//   - UPDATE refetches the full row by id and splices it in place, because
//     pushed rows lack joined fields such as like counts.
package reconcile

import (
	"context"
	"fmt"
	"sync"

	"github.com/anonto42/socialshop/backend/pkg/changefeed"
)

// Refetcher loads the full, joined shape of a single row.
type Refetcher[T any] func(ctx context.Context, id string) (T, error)

// List is safe for concurrent readers; patches are expected to come from a
// single consumer (see Run).
type List[T any] struct {
	mu      sync.RWMutex
	items   []T
	idOf    func(T) string
	refetch Refetcher[T]
}

// New creates a list seeded with initial. refetch may be nil, in which case
// updates are decoded from the pushed row directly.
func New[T any](idOf func(T) string, refetch Refetcher[T], initial []T) *List[T] {
	items := make([]T, len(initial))
	copy(items, initial)
	return &List[T]{items: items, idOf: idOf, refetch: refetch}
}

// Apply patches the list with one event.
func (l *List[T]) Apply(ctx context.Context, ev changefeed.Event) error {
	switch ev.Type {
	case changefeed.Insert:
		var item T
		if err := ev.Decode(&item); err != nil {
			return err
		}
		l.prepend(item)
		return nil
	case changefeed.Delete:
		id, err := ev.ID()
		if err != nil {
			return err
		}
		l.remove(id)
		return nil
	case changefeed.Update:
		id, err := ev.ID()
		if err != nil {
			return err
		}
		if !l.contains(id) {
			return nil
		}
		var item T
		if l.refetch != nil {
			item, err = l.refetch(ctx, id)
			if err != nil {
				return fmt.Errorf("refetch %s: %w", id, err)
			}
		} else if err := ev.Decode(&item); err != nil {
			return err
		}
		l.replace(id, item)
		return nil
	default:
		return fmt.Errorf("reconcile: unknown event type %q", ev.Type)
	}
}

// Run applies events until ctx is done or events is closed. onError may be nil.
func (l *List[T]) Run(ctx context.Context, events <-chan changefeed.Event, onError func(error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := l.Apply(ctx, ev); err != nil && onError != nil {
				onError(err)
			}
		}
	}
}

// Snapshot returns a copy of the current items.
func (l *List[T]) Snapshot() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

func (l *List[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Reset replaces the contents, e.g. after a full reload.
func (l *List[T]) Reset(items []T) {
	cp := make([]T, len(items))
	copy(cp, items)
	l.mu.Lock()
	l.items = cp
	l.mu.Unlock()
}

func (l *List[T]) prepend(item T) {
	id := l.idOf(item)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.indexLocked(id) >= 0 {
		return
	}
	l.items = append([]T{item}, l.items...)
}

func (l *List[T]) remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.items[:0:0]
	for _, it := range l.items {
		if l.idOf(it) != id {
			kept = append(kept, it)
		}
	}
	l.items = kept
}

func (l *List[T]) replace(id string, item T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexLocked(id); i >= 0 {
		l.items[i] = item
	}
}

func (l *List[T]) contains(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.indexLocked(id) >= 0
}

func (l *List[T]) indexLocked(id string) int {
	for i, it := range l.items {
		if l.idOf(it) == id {
			return i
		}
	}
	return -1
}
