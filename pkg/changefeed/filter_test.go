package changefeed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("receiver_id=eq.42")
	require.NoError(t, err)
	assert.Equal(t, Filter{Column: "receiver_id", Value: "42"}, f)
	assert.Equal(t, "receiver_id=eq.42", f.String())

	f, err = ParseFilter("")
	require.NoError(t, err)
	assert.True(t, f.IsZero())

	_, err = ParseFilter("receiver_id=gt.4")
	assert.ErrorIs(t, err, ErrBadFilter)

	_, err = ParseFilter("=eq.4")
	assert.ErrorIs(t, err, ErrBadFilter)
}

func TestFilterMatch(t *testing.T) {
	type row struct {
		ID         uint   `json:"id"`
		ReceiverID uint   `json:"receiver_id"`
		ChatID     string `json:"conversation_id"`
	}

	ins, err := NewEvent("messages", Insert, row{ID: 1, ReceiverID: 7, ChatID: "3_7"}, nil)
	require.NoError(t, err)

	assert.True(t, Eq("receiver_id", 7).Match(ins))
	assert.False(t, Eq("receiver_id", 8).Match(ins))
	assert.True(t, Filter{Column: "conversation_id", Value: "3_7"}.Match(ins))
	assert.False(t, Filter{Column: "missing", Value: "x"}.Match(ins))
	assert.True(t, Filter{}.Match(ins))

	// deletes are matched on the old image
	del, err := NewEvent("messages", Delete, nil, row{ID: 1, ReceiverID: 7})
	require.NoError(t, err)
	assert.True(t, Eq("receiver_id", 7).Match(del))
}

func TestEventID(t *testing.T) {
	ev, err := NewEvent("posts", Insert, map[string]any{"id": "65f0c0ffee", "body": "hi"}, nil)
	require.NoError(t, err)
	id, err := ev.ID()
	require.NoError(t, err)
	assert.Equal(t, "65f0c0ffee", id)

	ev, err = NewEvent("comments", Delete, nil, map[string]any{"id": 12})
	require.NoError(t, err)
	id, err = ev.ID()
	require.NoError(t, err)
	assert.Equal(t, "12", id)

	ev, err = NewEvent("comments", Insert, map[string]any{"text": "x"}, nil)
	require.NoError(t, err)
	_, err = ev.ID()
	assert.ErrorIs(t, err, ErrMissingID)
}
