package store

import (
	"context"
	"sync"
)

// Ensure Memory implements KV.
var _ KV = (*Memory)(nil)

// Memory is an in-memory KV used by tests and throwaway environments.
// It is safe for concurrent use.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get returns the value stored at key, or ok=false if absent.
func (m *Memory) Get(_ context.Context, key Key) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key.String()]
	if !ok {
		return nil, false, nil
	}
	// Copy so callers can't mutate stored state through the slice.
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Set stores value at key, overwriting any previous value.
func (m *Memory) Set(_ context.Context, key Key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	m.data[key.String()] = v
	return nil
}

// Delete removes the value at key.
func (m *Memory) Delete(_ context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key.String())
	return nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error {
	return nil
}

// Len returns the number of stored keys. Used by tests to assert that
// deletions leave no stray records behind.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Keys returns the canonical form of every stored key, in no particular
// order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}
