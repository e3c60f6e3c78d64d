package websocket

import (
	"encoding/json"
	"time"
)

// Message protocol definitions

type MessageType string

const (
	TypeEvent  MessageType = "event"  // a store changed; clients re-fetch
	TypeSystem MessageType = "system" // connection lifecycle notice
)

// Message structure for WebSocket communication
type Message struct {
	Type      MessageType `json:"type"`
	Event     string      `json:"event,omitempty"`
	Content   string      `json:"content,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewEventMessage(event string) *Message {
	return &Message{
		Type:      TypeEvent,
		Event:     event,
		Timestamp: time.Now().UTC(),
	}
}

func NewSystemMessage(content string) *Message {
	return &Message{
		Type:      TypeSystem,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON: marshal Message struct to JSON
func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MessageFromJSON: unmarshal JSON data to Message struct
func MessageFromJSON(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
