// Package kvstore defines the minimal key-value contract used by the grades
// ledger, along with in-process implementations.
package kvstore

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrNotFound is returned by Get when the key holds no value.
	ErrNotFound = errors.New("kvstore: key not found")
	// ErrUnavailable is returned by every call on a store with no backend.
	ErrUnavailable = errors.New("kvstore: storage unavailable")
)

// Store is a string-keyed blob store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Memory keeps values in a map. The zero value is ready to use.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get returns a copy of the stored value.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores a copy of value under key.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	return nil
}

// Keys lists the keys currently held.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}

// Unavailable models an execution context with no storage backend.
type Unavailable struct{}

// Get always fails with ErrUnavailable.
func (Unavailable) Get(context.Context, string) ([]byte, error) {
	return nil, ErrUnavailable
}

// Set always fails with ErrUnavailable.
func (Unavailable) Set(context.Context, string, []byte) error {
	return ErrUnavailable
}
