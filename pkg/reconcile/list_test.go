package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/socialshop/backend/pkg/changefeed"
)

type post struct {
	ID    string `json:"id"`
	Body  string `json:"body"`
	Likes int    `json:"likes"`
}

func postID(p post) string { return p.ID }

func ids(ps []post) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func mustEvent(t *testing.T, typ changefeed.EventType, newRow, oldRow any) changefeed.Event {
	t.Helper()
	ev, err := changefeed.NewEvent("posts", typ, newRow, oldRow)
	require.NoError(t, err)
	return ev
}

func TestInsertPrepends(t *testing.T) {
	l := New(postID, nil, []post{{ID: "b"}, {ID: "a"}})

	require.NoError(t, l.Apply(context.Background(), mustEvent(t, changefeed.Insert, post{ID: "c", Body: "new"}, nil)))

	got := l.Snapshot()
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, post{ID: "c", Body: "new"}, got[0])
	assert.Equal(t, []string{"c", "b", "a"}, ids(got))

	// replaying the same insert is a no-op
	require.NoError(t, l.Apply(context.Background(), mustEvent(t, changefeed.Insert, post{ID: "c"}, nil)))
	assert.Equal(t, 3, l.Len())
}

func TestDeleteRemovesOnlyMatchingID(t *testing.T) {
	l := New(postID, nil, []post{{ID: "c"}, {ID: "b"}, {ID: "a"}})

	require.NoError(t, l.Apply(context.Background(), mustEvent(t, changefeed.Delete, nil, post{ID: "b"})))
	assert.Equal(t, []string{"c", "a"}, ids(l.Snapshot()))

	require.NoError(t, l.Apply(context.Background(), mustEvent(t, changefeed.Delete, nil, post{ID: "zz"})))
	assert.Equal(t, []string{"c", "a"}, ids(l.Snapshot()))
}

func TestUpdateRefetchesAndSplices(t *testing.T) {
	var calls []string
	refetch := func(_ context.Context, id string) (post, error) {
		calls = append(calls, id)
		return post{ID: id, Body: "edited", Likes: 4}, nil
	}
	l := New(postID, refetch, []post{{ID: "c"}, {ID: "b", Body: "old"}, {ID: "a"}})

	// the pushed row lacks joined fields; the refetched one wins
	require.NoError(t, l.Apply(context.Background(), mustEvent(t, changefeed.Update, post{ID: "b", Body: "edited"}, nil)))

	got := l.Snapshot()
	assert.Equal(t, []string{"c", "b", "a"}, ids(got))
	assert.Equal(t, post{ID: "b", Body: "edited", Likes: 4}, got[1])
	assert.Equal(t, []string{"b"}, calls)

	// unknown ids are not refetched
	require.NoError(t, l.Apply(context.Background(), mustEvent(t, changefeed.Update, post{ID: "nope"}, nil)))
	assert.Equal(t, []string{"b"}, calls)
	assert.Equal(t, 3, l.Len())
}

func TestUpdateWithoutRefetchDecodesPushedRow(t *testing.T) {
	l := New(postID, nil, []post{{ID: "a", Body: "old"}})
	require.NoError(t, l.Apply(context.Background(), mustEvent(t, changefeed.Update, post{ID: "a", Body: "new"}, nil)))
	assert.Equal(t, "new", l.Snapshot()[0].Body)
}

func TestUpdateRefetchError(t *testing.T) {
	boom := errors.New("boom")
	l := New(postID, func(context.Context, string) (post, error) { return post{}, boom }, []post{{ID: "a", Body: "keep"}})

	err := l.Apply(context.Background(), mustEvent(t, changefeed.Update, post{ID: "a"}, nil))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "keep", l.Snapshot()[0].Body)
}

func TestRunDrainsChannel(t *testing.T) {
	l := New(postID, nil, nil)
	events := make(chan changefeed.Event, 3)
	events <- mustEvent(t, changefeed.Insert, post{ID: "a"}, nil)
	events <- mustEvent(t, changefeed.Insert, post{ID: "b"}, nil)
	events <- changefeed.Event{Table: "posts", Type: "TRUNCATE"}
	close(events)

	var errs []error
	l.Run(context.Background(), events, func(err error) { errs = append(errs, err) })

	assert.Equal(t, []string{"b", "a"}, ids(l.Snapshot()))
	assert.Len(t, errs, 1)
}

func TestSnapshotIsACopy(t *testing.T) {
	l := New(postID, nil, []post{{ID: "a"}})
	snap := l.Snapshot()
	snap[0].ID = "mutated"
	assert.Equal(t, "a", l.Snapshot()[0].ID)

	l.Reset([]post{{ID: "x"}, {ID: "y"}})
	assert.Equal(t, []string{"x", "y"}, ids(l.Snapshot()))
}
