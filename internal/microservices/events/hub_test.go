package events

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"manhwahub/internal/microservices/http-api/service"
)

func TestHub_UnscopedBroadcastReachesAllSubscribers(t *testing.T) {
	hub := NewHub()
	a, unsubA := hub.Subscribe(1)
	b, unsubB := hub.Subscribe(2)
	all, unsubAll := hub.SubscribeAll()
	defer unsubA()
	defer unsubB()
	defer unsubAll()

	hub.Broadcast(context.Background(), "notification-added")

	assert.Equal(t, Event{Name: "notification-added"}, <-a)
	assert.Equal(t, "notification-added", (<-b).Name)
	assert.Equal(t, "notification-added", (<-all).Name)
	assert.Equal(t, 3, hub.Count())
}

func TestHub_ScopedBroadcastReachesOnlyItsUser(t *testing.T) {
	hub := NewHub()
	owner, unsubOwner := hub.Subscribe(7)
	second, unsubSecond := hub.Subscribe(7)
	other, unsubOther := hub.Subscribe(8)
	all, unsubAll := hub.SubscribeAll()
	defer unsubOwner()
	defer unsubSecond()
	defer unsubOther()
	defer unsubAll()

	hub.Broadcast(service.WithEventUser(context.Background(), 7), "notification-updated")

	want := Event{Name: "notification-updated", UserID: 7, Scoped: true}
	assert.Equal(t, want, <-owner)
	assert.Equal(t, want, <-second)
	assert.Equal(t, want, <-all)
	assert.Empty(t, other)
}

func TestEvent_For(t *testing.T) {
	assert.True(t, Event{Name: "x"}.For(3))
	assert.True(t, Event{Name: "x", UserID: 3, Scoped: true}.For(3))
	assert.False(t, Event{Name: "x", UserID: 3, Scoped: true}.For(4))
	assert.False(t, Event{Name: "x", UserID: 0, Scoped: true}.For(4))
}

func TestHub_SlowSubscriberIsSkipped(t *testing.T) {
	hub := NewHub()
	slow, unsub := hub.Subscribe(1)
	defer unsub()

	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Broadcast(context.Background(), "notification-updated")
	}

	assert.Len(t, slow, subscriberBuffer)
}

func TestHub_UnsubscribeClosesAndIsIdempotent(t *testing.T) {
	hub := NewHub()
	ch, unsub := hub.Subscribe(1)
	all, unsubAll := hub.SubscribeAll()

	unsub()
	unsub()
	unsubAll()

	_, open := <-ch
	assert.False(t, open)
	_, open = <-all
	assert.False(t, open)
	assert.Zero(t, hub.Count())
	assert.NotPanics(t, func() { hub.Broadcast(context.Background(), "notification-added") })
}

func TestHub_EmptyEventIgnored(t *testing.T) {
	hub := NewHub()
	ch, unsub := hub.Subscribe(1)
	defer unsub()

	hub.Broadcast(context.Background(), "")
	assert.Empty(t, ch)
}

func TestHub_ConcurrentUse(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, unsub := hub.Subscribe(int64(i % 3))
			unsub()
		}()
		go func() {
			defer wg.Done()
			ctx := service.WithEventUser(context.Background(), int64(i%3))
			hub.Broadcast(ctx, "notification-settings-updated")
		}()
	}
	wg.Wait()
	assert.Zero(t, hub.Count())
}
