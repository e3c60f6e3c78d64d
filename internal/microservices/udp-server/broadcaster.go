package udp

import (
	"fmt"
	"log/slog"
	"net"

	"manhwahub/internal/microservices/events"
)

type packetWriter interface {
	WriteToUDP(b []byte, addr *net.UDPAddr) (int, error)
}

// Broadcaster fans store events out to the subscribers they belong to
type Broadcaster struct {
	conn       packetWriter
	subManager *SubscriberManager
	logger     *slog.Logger
}

func NewBroadcaster(conn packetWriter, subManager *SubscriberManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		conn:       conn,
		subManager: subManager,
		logger:     logger,
	}
}

// BroadcastEvent sends one event datagram to every subscriber the event is
// for and returns how many were reached. Addresses that fail a write are dropped.
func (b *Broadcaster) BroadcastEvent(event events.Event) (int, error) {
	data, err := NewEventDatagram(event.Name).ToJSON()
	if err != nil {
		return 0, fmt.Errorf("failed to marshal datagram: %w", err)
	}

	sent := 0
	for _, sub := range b.subManager.GetAll() {
		if !event.For(sub.UserID) {
			continue
		}
		if _, err := b.conn.WriteToUDP(data, sub.Addr); err != nil {
			b.logger.Debug("dropping UDP subscriber", "addr", sub.Addr.String(), "user_id", sub.UserID, "error", err)
			b.subManager.Remove(sub.Addr)
			continue
		}
		sent++
	}
	return sent, nil
}
