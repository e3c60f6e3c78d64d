package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockReloader struct {
	mock.Mock
}

func (m *MockReloader) Reload(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingBroadcaster) Broadcast(_ context.Context, event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingBroadcaster) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func TestPoll_BroadcastsOnlyChangedTargets(t *testing.T) {
	notifications := new(MockReloader)
	settings := new(MockReloader)
	broken := new(MockReloader)
	notifications.On("Reload", mock.Anything).Return(true, nil)
	settings.On("Reload", mock.Anything).Return(false, nil)
	broken.On("Reload", mock.Anything).Return(false, errors.New("storage offline"))

	b := &recordingBroadcaster{}
	p := New(time.Hour, b, nil,
		Target{Name: "broken", Store: broken, OnChange: "x"},
		Target{Name: "notifications", Store: notifications, OnChange: "notification-updated"},
		Target{Name: "settings", Store: settings, OnChange: "notification-settings-updated"},
	)

	p.Poll(context.Background())

	assert.Equal(t, []string{"notification-updated"}, b.Events())
	notifications.AssertExpectations(t)
	settings.AssertExpectations(t)
	broken.AssertExpectations(t)
}

func TestRun_TriggerAndTick(t *testing.T) {
	store := new(MockReloader)
	store.On("Reload", mock.Anything).Return(true, nil)
	b := &recordingBroadcaster{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p := New(time.Hour, b, nil, Target{Name: "n", Store: store, OnChange: "notification-updated"})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	p.Trigger()
	assert.Eventually(t, func() bool { return len(b.Events()) >= 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

type countingReloader struct {
	calls atomic.Int32
}

func (c *countingReloader) Reload(context.Context) (bool, error) {
	c.calls.Add(1)
	return false, nil
}

func TestRun_Ticks(t *testing.T) {
	store := &countingReloader{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := New(5*time.Millisecond, &recordingBroadcaster{}, nil, Target{Name: "n", Store: store})
	go p.Run(ctx)

	assert.Eventually(t, func() bool { return store.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestTrigger_Coalesces(t *testing.T) {
	p := New(time.Hour, &recordingBroadcaster{}, nil)
	p.Trigger()
	p.Trigger()
	p.Trigger()
	assert.Len(t, p.trigger, 1)
}
