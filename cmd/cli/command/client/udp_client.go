package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// udp_client.go = follows the UDP event feed of the API server.

const udpPingInterval = 30 * time.Second

type udpRequest struct {
	Type  string `json:"type"`
	Token string `json:"token,omitempty"`
}

type udpDatagram struct {
	Type      string    `json:"type"`
	Event     string    `json:"event,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ListenUDP subscribes to the feed at addr and calls onEvent for every datagram
// until ctx ends. A rejected subscription is returned as an error.
func ListenUDP(ctx context.Context, addr, token string, onEvent func(Event)) error {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to resolve udp addr: %w", err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return fmt.Errorf("failed to dial udp: %w", err)
	}
	defer conn.Close()

	if err := writeRequest(conn, udpRequest{Type: "SUBSCRIBE", Token: token}); err != nil {
		return err
	}
	defer func() { _ = writeRequest(conn, udpRequest{Type: "UNSUBSCRIBE"}) }()

	stop := context.AfterFunc(ctx, func() { _ = conn.SetReadDeadline(time.Now()) })
	defer stop()

	go func() {
		ticker := time.NewTicker(udpPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = writeRequest(conn, udpRequest{Type: "PING"})
			}
		}
	}()

	subscribed := false
	buf := make([]byte, 8192)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("udp read error: %w", err)
		}

		var d udpDatagram
		if err := json.Unmarshal(buf[:n], &d); err != nil {
			continue
		}
		switch d.Type {
		case "EVENT":
			onEvent(Event{Type: "event", Event: d.Event, Timestamp: d.Timestamp})
		case "SUBSCRIBED", "UNSUBSCRIBED":
			subscribed = d.Type == "SUBSCRIBED"
			onEvent(Event{Type: "system", Content: d.Message, Timestamp: d.Timestamp})
		case "ERROR":
			if !subscribed {
				return errors.New("subscription rejected: " + d.Message)
			}
			onEvent(Event{Type: "system", Content: "error: " + d.Message, Timestamp: d.Timestamp})
		}
	}
}

func writeRequest(conn *net.UDPConn, req udpRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("failed to send %s: %w", strings.ToLower(req.Type), err)
	}
	return nil
}
