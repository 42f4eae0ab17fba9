package client

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/anonto42/socialshop/backend/internal/models"
	"github.com/anonto42/socialshop/backend/pkg/changefeed"
	"github.com/anonto42/socialshop/backend/pkg/reconcile"
)

// View is a list kept current by one or more realtime subscriptions.
type View[T any] struct {
	*reconcile.List[T]

	subs   []*Subscription
	cancel context.CancelFunc
	done   chan struct{}
}

// Done is closed once the view stops receiving events.
func (v *View[T]) Done() <-chan struct{} {
	return v.done
}

// Close stops the view and waits for the pending patch to finish.
func (v *View[T]) Close() error {
	v.cancel()
	var first error
	for _, s := range v.subs {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	<-v.done
	return first
}

type (
	FeedView         = View[models.FeedPost]
	ChatView         = View[models.Message]
	NotificationView = View[models.NotificationWithSender]
)

// translate rewrites an event from a related table into an event on the
// view's own rows. ok=false drops the event.
type translate func(changefeed.Event) (ev changefeed.Event, ok bool)

type source struct {
	sub *Subscription
	fn  translate
}

func startView[T any](ctx context.Context, list *reconcile.List[T], log *zap.Logger, sources []source) *View[T] {
	ctx, cancel := context.WithCancel(ctx)
	merged := make(chan changefeed.Event)
	v := &View[T]{List: list, cancel: cancel, done: make(chan struct{})}

	var wg sync.WaitGroup
	for _, src := range sources {
		v.subs = append(v.subs, src.sub)
		wg.Add(1)
		go func(src source) {
			defer wg.Done()
			for ev := range src.sub.Events() {
				if src.fn != nil {
					var ok bool
					if ev, ok = src.fn(ev); !ok {
						continue
					}
				}
				select {
				case merged <- ev:
				case <-ctx.Done():
					return
				}
			}
		}(src)
	}
	go func() {
		wg.Wait()
		close(merged)
	}()

	go func() {
		defer close(v.done)
		list.Run(ctx, merged, func(err error) {
			log.Warn("dropping change event", zap.Error(err))
		})
	}()
	return v
}

func closeAll(subs ...*Subscription) {
	for _, s := range subs {
		if s != nil {
			_ = s.Close()
		}
	}
}

// touchPost turns a like or comment change into an update of its post, so
// the post is refetched with fresh counts.
func touchPost(ev changefeed.Event) (changefeed.Event, bool) {
	var row struct {
		PostID string `json:"post_id"`
	}
	if err := json.Unmarshal(ev.Row(), &row); err != nil || row.PostID == "" {
		return ev, false
	}
	out, err := changefeed.NewEvent("posts", changefeed.Update, map[string]string{"id": row.PostID}, nil)
	if err != nil {
		return ev, false
	}
	return out, true
}

// WatchFeed loads one feed page and keeps it current: new posts are
// prepended, deleted posts removed, and a post whose row, likes or comments
// change is refetched.
func (c *Client) WatchFeed(ctx context.Context, page, limit int) (*FeedView, error) {
	initial, err := c.Feed(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	posts, err := c.Subscribe(ctx, "posts", "")
	if err != nil {
		return nil, err
	}
	likes, err := c.Subscribe(ctx, "likes", "", changefeed.Insert, changefeed.Delete)
	if err != nil {
		closeAll(posts)
		return nil, err
	}
	comments, err := c.Subscribe(ctx, "comments", "", changefeed.Insert, changefeed.Delete)
	if err != nil {
		closeAll(posts, likes)
		return nil, err
	}

	list := reconcile.New(func(p models.FeedPost) string { return p.ID.Hex() },
		func(ctx context.Context, id string) (models.FeedPost, error) {
			details, err := c.PostDetails(ctx, id)
			if err != nil {
				return models.FeedPost{}, err
			}
			return details.FeedPost, nil
		}, initial)

	return startView(ctx, list, c.log, []source{
		{sub: posts},
		{sub: likes, fn: touchPost},
		{sub: comments, fn: touchPost},
	}), nil
}

// WatchChat loads the conversation between self and other and keeps it
// current. The list is newest first.
func (c *Client) WatchChat(ctx context.Context, self, other uint) (*ChatView, error) {
	history, err := c.Messages(ctx, other)
	if err != nil {
		return nil, err
	}
	newestFirst := make([]models.Message, len(history))
	for i, m := range history {
		newestFirst[len(history)-1-i] = m
	}

	sub, err := c.Subscribe(ctx, "messages", "conversation_id=eq."+models.ConversationID(self, other))
	if err != nil {
		return nil, err
	}

	list := reconcile.New(func(m models.Message) string { return strconv.FormatUint(uint64(m.ID), 10) }, nil, newestFirst)
	return startView(ctx, list, c.log, []source{{sub: sub}}), nil
}

// WatchNotifications loads the first page of self's notifications and keeps
// it current.
func (c *Client) WatchNotifications(ctx context.Context, self uint, limit int) (*NotificationView, error) {
	initial, err := c.Notifications(ctx, 1, limit)
	if err != nil {
		return nil, err
	}

	filter := "receiver_id=eq." + strconv.FormatUint(uint64(self), 10)
	sub, err := c.Subscribe(ctx, "notifications", filter, changefeed.Insert, changefeed.Delete)
	if err != nil {
		return nil, err
	}

	list := reconcile.New(func(n models.NotificationWithSender) string { return strconv.FormatUint(uint64(n.ID), 10) }, nil, initial)
	return startView(ctx, list, c.log, []source{{sub: sub}}), nil
}

// Unseen counts the notifications in v the caller has not acknowledged.
func Unseen(v *NotificationView) int {
	n := 0
	for _, item := range v.Snapshot() {
		if !item.Seen {
			n++
		}
	}
	return n
}
