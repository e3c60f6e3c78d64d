package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const publishTimeout = 2 * time.Second

// envelope is the message shape carried over Redis Pub/Sub.
type envelope struct {
	Origin string    `json:"origin"`
	Event  string    `json:"event"`
	SentAt time.Time `json:"sent_at"`
}

// RedisBridge relays change events between processes sharing one store.
// Local events go to the Hub and to the channel; events from other
// processes are handed to OnRemote, which is expected to reload state
// before anything is broadcast locally.
type RedisBridge struct {
	client   *redis.Client
	channel  string
	origin   string
	hub      *Hub
	onRemote func(event string)
	logger   *slog.Logger
}

func NewRedisBridge(client *redis.Client, channel string, hub *Hub, onRemote func(string), logger *slog.Logger) *RedisBridge {
	if logger == nil {
		logger = slog.Default()
	}
	if onRemote == nil {
		onRemote = func(string) {}
	}
	return &RedisBridge{
		client:   client,
		channel:  channel,
		origin:   uuid.NewString(),
		hub:      hub,
		onRemote: onRemote,
		logger:   logger.With("component", "redis_bridge", "channel", channel),
	}
}

// Origin identifies this process on the channel.
func (b *RedisBridge) Origin() string {
	return b.origin
}

// Broadcast fans the event out locally and publishes it for other processes.
// Publish failures are logged; local delivery never depends on Redis.
func (b *RedisBridge) Broadcast(ctx context.Context, event string) {
	b.hub.Broadcast(ctx, event)

	body, err := json.Marshal(envelope{Origin: b.origin, Event: event, SentAt: time.Now().UTC()})
	if err != nil {
		b.logger.Error("encode sync envelope failed", "error", err)
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := b.client.Publish(pubCtx, b.channel, body).Err(); err != nil {
		b.logger.Error("publish sync event failed", "event", event, "error", err)
	}
}

// Run subscribes to the channel and blocks until ctx is cancelled.
func (b *RedisBridge) Run(ctx context.Context) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	// Ensure subscription is established before reading messages.
	if _, err := pubsub.Receive(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	b.logger.Info("sync bridge subscribed", "origin", b.origin)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.handle([]byte(msg.Payload))
		}
	}
}

func (b *RedisBridge) handle(payload []byte) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		b.logger.Warn("malformed sync message", "error", err)
		return
	}
	if env.Event == "" || env.Origin == b.origin {
		return
	}
	b.logger.Debug("remote change", "event", env.Event, "origin", env.Origin)
	b.onRemote(env.Event)
}
