package poller

import (
	"context"
	"log/slog"
	"time"
)

// Reloader re-reads shared state and reports whether it changed.
type Reloader interface {
	Reload(ctx context.Context) (bool, error)
}

// Broadcaster delivers an event to local subscribers only.
type Broadcaster interface {
	Broadcast(ctx context.Context, event string)
}

// Target pairs a store with the event announced when its state changes.
type Target struct {
	Name     string
	Store    Reloader
	OnChange string
}

// Poller keeps in-memory stores in step with writes made by other processes
// sharing the same storage. It reloads on every tick and on Trigger.
type Poller struct {
	interval    time.Duration
	targets     []Target
	broadcaster Broadcaster
	logger      *slog.Logger
	trigger     chan struct{}
}

func New(interval time.Duration, broadcaster Broadcaster, logger *slog.Logger, targets ...Target) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		interval:    interval,
		targets:     targets,
		broadcaster: broadcaster,
		logger:      logger.With("component", "poller"),
		trigger:     make(chan struct{}, 1),
	}
}

// Trigger requests an immediate reload. Requests made while one is pending coalesce.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.Poll(ctx)
		case <-p.trigger:
			p.Poll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Poll reloads every target once and broadcasts for those that changed.
func (p *Poller) Poll(ctx context.Context) {
	for _, t := range p.targets {
		changed, err := t.Store.Reload(ctx)
		if err != nil {
			p.logger.Warn("reload failed", "target", t.Name, "error", err)
			continue
		}
		if changed {
			p.logger.Debug("external change picked up", "target", t.Name)
			p.broadcaster.Broadcast(ctx, t.OnChange)
		}
	}
}
