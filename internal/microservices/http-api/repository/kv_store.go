package repository

import (
	"context"
	"errors"
	"sync"
)

// Storage keys for the two independent blobs.
const (
	NotificationsKey = "notifications"
	SettingsKey      = "notification_settings"
)

// ErrKeyNotFound is returned by KVStore.Get when nothing is stored under the key.
var ErrKeyNotFound = errors.New("key not found")

// KVStore is the local key-value storage every blob is written to.
// Implementations must replace the whole value on Set.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// MemoryKVStore keeps blobs in process memory. Used by tests and STORAGE_DRIVER=memory.
type MemoryKVStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{data: make(map[string][]byte)}
}

func (m *MemoryKVStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *MemoryKVStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	return nil
}

func (m *MemoryKVStore) Close() error {
	return nil
}
