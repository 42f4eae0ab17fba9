// Package changefeed defines the row-level change events pushed to realtime
// subscribers and the wire messages exchanged over the realtime socket.
package changefeed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// EventType tags a change event.
type EventType string

const (
	Insert EventType = "INSERT"
	Update EventType = "UPDATE"
	Delete EventType = "DELETE"
	// Any is only meaningful in a subscription and matches every event type.
	Any EventType = "*"
)

var ErrMissingID = errors.New("changefeed: row has no id")

// Event is a single row change on a table. New holds the row after the
// change (insert/update), Old holds the row before it (update/delete).
type Event struct {
	Table           string          `json:"table"`
	Type            EventType       `json:"type"`
	New             json.RawMessage `json:"new,omitempty"`
	Old             json.RawMessage `json:"old,omitempty"`
	CommitTimestamp time.Time       `json:"commit_timestamp"`
}

// NewEvent marshals the row images into an Event. Either image may be nil.
func NewEvent(table string, typ EventType, newRow, oldRow any) (Event, error) {
	ev := Event{Table: table, Type: typ, CommitTimestamp: time.Now().UTC()}
	if newRow != nil {
		b, err := json.Marshal(newRow)
		if err != nil {
			return Event{}, fmt.Errorf("marshal new row: %w", err)
		}
		ev.New = b
	}
	if oldRow != nil {
		b, err := json.Marshal(oldRow)
		if err != nil {
			return Event{}, fmt.Errorf("marshal old row: %w", err)
		}
		ev.Old = b
	}
	return ev, nil
}

// Row returns the image a filter should be evaluated against: Old for
// deletes, New otherwise.
func (e Event) Row() json.RawMessage {
	if e.Type == Delete || len(e.New) == 0 {
		return e.Old
	}
	return e.New
}

// ID extracts the "id" column of the relevant row image as a string.
func (e Event) ID() (string, error) {
	return rowID(e.Row())
}

// Decode unmarshals the New image into dst.
func (e Event) Decode(dst any) error {
	if len(e.New) == 0 {
		return fmt.Errorf("changefeed: %s event on %s has no new row", e.Type, e.Table)
	}
	return json.Unmarshal(e.New, dst)
}

func rowID(raw json.RawMessage) (string, error) {
	fields, err := decodeRow(raw)
	if err != nil {
		return "", err
	}
	v, ok := fields["id"]
	if !ok || v == nil {
		return "", ErrMissingID
	}
	return stringify(v), nil
}

func decodeRow(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, ErrMissingID
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("changefeed: decode row: %w", err)
	}
	return fields, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	case nil:
		return "null"
	default:
		return fmt.Sprint(t)
	}
}
