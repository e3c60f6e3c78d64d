package udp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"time"

	"manhwahub/internal/microservices/events"
	"manhwahub/internal/microservices/http-api/service"
)

const (
	maxDatagramSize = 4096
	cleanupInterval = time.Minute
)

// TokenValidator verifies the access token sent with SUBSCRIBE
type TokenValidator interface {
	ValidateToken(tokenString string) (*service.Claims, error)
}

// EventSubscriber is the local event hub
type EventSubscriber interface {
	SubscribeAll() (<-chan events.Event, func())
}

// Server is a UDP event feed for terminal clients. It forwards the same
// event names as the SSE and WebSocket streams, each only to its owner.
type Server struct {
	conn        *net.UDPConn
	subManager  *SubscriberManager
	broadcaster *Broadcaster
	auth        TokenValidator
	logger      *slog.Logger
}

// NewServer listens on addr (host:port, port 0 picks a free one)
func NewServer(addr string, auth TokenValidator, timeout time.Duration, logger *slog.Logger) (*Server, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP address: %w", err)
	}

	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on UDP: %w", err)
	}

	subManager := NewSubscriberManager(timeout)
	return &Server{
		conn:        conn,
		subManager:  subManager,
		broadcaster: NewBroadcaster(conn, subManager, logger),
		auth:        auth,
		logger:      logger,
	}, nil
}

// Addr returns the bound address
func (s *Server) Addr() *net.UDPAddr {
	return s.conn.LocalAddr().(*net.UDPAddr)
}

// Subscribers returns the number of listening addresses
func (s *Server) Subscribers() int {
	return s.subManager.Count()
}

// Run serves until ctx ends, then closes the socket.
func (s *Server) Run(ctx context.Context, hub EventSubscriber) error {
	ch, unsubscribe := hub.SubscribeAll()
	defer unsubscribe()

	stop := context.AfterFunc(ctx, func() { _ = s.conn.Close() })
	defer stop()

	go s.subManager.RunCleanup(ctx, cleanupInterval)
	go s.relay(ctx, ch)

	s.logger.Info("UDP event feed listening", "addr", s.Addr().String())

	buffer := make([]byte, maxDatagramSize)
	for {
		n, addr, err := s.conn.ReadFromUDP(buffer)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Warn("error reading UDP datagram", "error", err)
			continue
		}
		s.processMessage(buffer[:n], addr)
	}
}

func (s *Server) relay(ctx context.Context, ch <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if _, err := s.broadcaster.BroadcastEvent(event); err != nil {
				s.logger.Warn("UDP broadcast failed", "event", event.Name, "error", err)
			}
		}
	}
}

// processMessage handles one client request
func (s *Server) processMessage(data []byte, addr *net.UDPAddr) {
	req, err := ParseRequest(data)
	if err != nil {
		s.logger.Debug("malformed UDP request", "addr", addr.String(), "error", err)
		s.reply(addr, newReply(TypeError, "malformed request"))
		return
	}

	switch req.Type {
	case TypeSubscribe:
		claims, err := s.auth.ValidateToken(req.Token)
		if err != nil {
			s.reply(addr, newReply(TypeError, err.Error()))
			return
		}
		if !canRead(claims.Scopes) {
			s.reply(addr, newReply(TypeError, "insufficient scope"))
			return
		}
		s.subManager.Add(claims.UserID, addr)
		s.logger.Debug("UDP subscriber added", "user_id", claims.UserID, "addr", addr.String())
		s.reply(addr, newReply(TypeSubscribed, fmt.Sprintf("subscribed as user %d", claims.UserID)))

	case TypeUnsubscribe:
		s.subManager.Remove(addr)
		s.reply(addr, newReply(TypeUnsubscribed, "unsubscribed"))

	case TypePing:
		if !s.subManager.Touch(addr) {
			s.reply(addr, newReply(TypeError, "not subscribed"))
			return
		}
		s.reply(addr, newReply(TypePong, ""))

	default:
		s.reply(addr, newReply(TypeError, "unknown request type "+string(req.Type)))
	}
}

func (s *Server) reply(addr *net.UDPAddr, d *Datagram) {
	data, err := d.ToJSON()
	if err != nil {
		return
	}
	if _, err := s.conn.WriteToUDP(data, addr); err != nil {
		s.logger.Debug("UDP reply failed", "addr", addr.String(), "error", err)
	}
}

func canRead(scopes []string) bool {
	return slices.Contains(scopes, service.ScopeNotificationsRead) || slices.Contains(scopes, "notifications:*")
}
