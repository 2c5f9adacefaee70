package domain

import (
	"fmt"
	"time"
)

// MessageType identifies the kind of event a broadcast message carries.
type MessageType string

const (
	TypeTrade     MessageType = "trade"
	TypePosition  MessageType = "position"
	TypeMetrics   MessageType = "metrics"
	TypeMarket    MessageType = "market"
	TypeTest      MessageType = "test"
	TypeBroadcast MessageType = "broadcast"
)

// allowedTypes is the fixed set of message types the hub will deliver.
var allowedTypes = map[MessageType]struct{}{
	TypeTrade:     {},
	TypePosition:  {},
	TypeMetrics:   {},
	TypeMarket:    {},
	TypeTest:      {},
	TypeBroadcast: {},
}

// Valid reports whether t is a member of the allowed type set.
func (t MessageType) Valid() bool {
	_, ok := allowedTypes[t]
	return ok
}

// Message is the unit of broadcast. Timestamp is stamped by the engine at
// broadcast time; Data defaults to an empty object when absent.
type Message struct {
	Type      MessageType `json:"type"`
	Data      any         `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewMessage constructs a message, rejecting types outside the allowed set
// and normalizing a nil payload to an empty object.
func NewMessage(t MessageType, data any) (Message, error) {
	if !t.Valid() {
		return Message{}, fmt.Errorf("message type %q is not allowed", t)
	}
	if data == nil {
		data = map[string]any{}
	}
	return Message{Type: t, Data: data}, nil
}
