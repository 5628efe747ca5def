package storage

import (
	"context"
	"sync"
)

type MemorySlot struct {
	mu    sync.RWMutex
	store map[string][]byte
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{
		store: make(map[string][]byte),
	}
}

func (m *MemorySlot) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.store[key]
	if !ok {
		return nil, ErrEmptySlot
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MemorySlot) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.store[key] = buf
	return nil
}

func (m *MemorySlot) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, key)
	return nil
}
