package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"wallet/internal/core"
	"wallet/internal/notify"
)

// StoreChangedMessage is the wire form of a notify.Event. It carries only
// the identity of the changed record; consumers refetch what they need.
type StoreChangedMessage struct {
	Kind      core.Kind `json:"kind"`
	Op        notify.Op `json:"op"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewStoreChangedMessage(e notify.Event) *StoreChangedMessage {
	ts := e.At
	if ts.IsZero() {
		ts = time.Now()
	}
	return &StoreChangedMessage{Kind: e.Kind, Op: e.Op, ID: e.ID, Timestamp: ts.UTC()}
}

// Event converts the message back to a notifier event.
func (m *StoreChangedMessage) Event() notify.Event {
	return notify.Event{Kind: m.Kind, Op: m.Op, ID: m.ID, At: m.Timestamp}
}

func (m *StoreChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// StoreChangedMessageFromJSON decodes data and rejects messages without a
// kind or op.
func StoreChangedMessageFromJSON(data []byte) (*StoreChangedMessage, error) {
	var msg StoreChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind == "" || msg.Op == "" {
		return nil, fmt.Errorf("store changed message missing kind or op")
	}
	return &msg, nil
}
