package udp

import (
	"context"
	"net"
	"sync"
	"time"
)

// Subscriber is one listening client address
type Subscriber struct {
	UserID   int64
	Addr     *net.UDPAddr
	LastSeen time.Time
}

// SubscriberManager tracks subscribers by remote address, so one user may
// listen from several terminals.
type SubscriberManager struct {
	mu          sync.RWMutex
	subscribers map[string]*Subscriber // addr -> Subscriber
	timeout     time.Duration
	now         func() time.Time
}

// NewSubscriberManager creates a manager that forgets addresses silent for longer than timeout
func NewSubscriberManager(timeout time.Duration) *SubscriberManager {
	return &SubscriberManager{
		subscribers: make(map[string]*Subscriber),
		timeout:     timeout,
		now:         time.Now,
	}
}

// Add adds or refreshes a subscriber
func (sm *SubscriberManager) Add(userID int64, addr *net.UDPAddr) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.subscribers[addr.String()] = &Subscriber{
		UserID:   userID,
		Addr:     addr,
		LastSeen: sm.now(),
	}
}

// Remove removes the subscriber at addr
func (sm *SubscriberManager) Remove(addr *net.UDPAddr) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.subscribers, addr.String())
}

// Touch updates the last seen time; false when addr is not subscribed.
func (sm *SubscriberManager) Touch(addr *net.UDPAddr) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sub, exists := sm.subscribers[addr.String()]
	if exists {
		sub.LastSeen = sm.now()
	}
	return exists
}

// GetAll returns a snapshot of all subscribers
func (sm *SubscriberManager) GetAll() []Subscriber {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	subs := make([]Subscriber, 0, len(sm.subscribers))
	for _, sub := range sm.subscribers {
		subs = append(subs, *sub)
	}
	return subs
}

// CleanupInactive removes subscribers that missed their pings
func (sm *SubscriberManager) CleanupInactive() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	removed := 0
	now := sm.now()
	for key, sub := range sm.subscribers {
		if now.Sub(sub.LastSeen) > sm.timeout {
			delete(sm.subscribers, key)
			removed++
		}
	}
	return removed
}

// Count returns the number of subscribers
func (sm *SubscriberManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return len(sm.subscribers)
}

// RunCleanup periodically drops inactive subscribers until ctx ends
func (sm *SubscriberManager) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sm.CleanupInactive()
		case <-ctx.Done():
			return
		}
	}
}
