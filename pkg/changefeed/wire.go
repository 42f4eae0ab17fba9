package changefeed

// Client actions on the realtime socket.
const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

// Server message kinds on the realtime socket.
const (
	KindEvent = "event"
	KindAck   = "ack"
	KindError = "error"
)

// ClientMessage is sent by a subscriber to open or close a topic.
type ClientMessage struct {
	Action string      `json:"action"`
	Topic  string      `json:"topic"`
	Table  string      `json:"table,omitempty"`
	Filter string      `json:"filter,omitempty"`
	Events []EventType `json:"events,omitempty"`
}

// ServerMessage is pushed to a subscriber.
type ServerMessage struct {
	Kind  string `json:"kind"`
	Topic string `json:"topic"`
	Event *Event `json:"event,omitempty"`
	Error string `json:"error,omitempty"`
}
