package udp

import (
	"encoding/json"
	"errors"
	"time"
)

// DatagramType defines the type of a feed datagram
type DatagramType string

const (
	// client -> server
	TypeSubscribe   DatagramType = "SUBSCRIBE"
	TypeUnsubscribe DatagramType = "UNSUBSCRIBE"
	TypePing        DatagramType = "PING"

	// server -> client
	TypeSubscribed   DatagramType = "SUBSCRIBED"
	TypeUnsubscribed DatagramType = "UNSUBSCRIBED"
	TypePong         DatagramType = "PONG"
	TypeEvent        DatagramType = "EVENT"
	TypeError        DatagramType = "ERROR"
)

// Datagram is one server message. Event datagrams only name the change;
// clients re-query the HTTP API for the data.
type Datagram struct {
	Type      DatagramType `json:"type"`
	Event     string       `json:"event,omitempty"`
	Message   string       `json:"message,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// NewEventDatagram wraps a store event name
func NewEventDatagram(event string) *Datagram {
	return &Datagram{Type: TypeEvent, Event: event, Timestamp: time.Now()}
}

func newReply(t DatagramType, message string) *Datagram {
	return &Datagram{Type: t, Message: message, Timestamp: time.Now()}
}

// ToJSON converts the datagram to JSON bytes
func (d *Datagram) ToJSON() ([]byte, error) {
	return json.Marshal(d)
}

// Request is a client message. SUBSCRIBE carries a reader access token.
type Request struct {
	Type  DatagramType `json:"type"`
	Token string       `json:"token,omitempty"`
}

// ParseRequest parses an incoming client datagram
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	if req.Type == "" {
		return nil, errors.New("missing request type")
	}
	return &req, nil
}
