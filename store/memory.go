package store

import (
	"context"
	"sync"

	"github.com/dacite-io/dacite/hash"
)

// Memory is an in-process blob store backed by a map, for tests and
// ephemeral use.
type Memory struct {
	mu    sync.RWMutex
	blobs map[hash.Hash][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[hash.Hash][]byte)}
}

// Put stores a copy of data at addr.
func (m *Memory) Put(ctx context.Context, addr hash.Hash, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[addr]; ok {
		return nil
	}
	m.blobs[addr] = append([]byte(nil), data...)
	return nil
}

// Get returns a copy of the blob at addr.
func (m *Memory) Get(ctx context.Context, addr hash.Hash) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[addr]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Has reports whether addr is present.
func (m *Memory) Has(ctx context.Context, addr hash.Hash) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blobs[addr]
	return ok, nil
}

// Len returns the number of stored blobs.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

// Close is a no-op for the memory backend.
func (m *Memory) Close() error { return nil }
