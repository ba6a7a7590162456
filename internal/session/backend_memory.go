package session

import (
	"context"
	"sync"
)

// MemoryBackend keeps sessions in process memory. It is the development and
// test backend; production deployments use Redis so sessions survive restarts.
type MemoryBackend struct {
	mu       sync.RWMutex
	sessions map[string]map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{sessions: make(map[string]map[string][]byte)}
}

func (b *MemoryBackend) Get(_ context.Context, sessionID, key string) ([]byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	values, ok := b.sessions[sessionID]
	if !ok {
		return nil, false, nil
	}
	value, ok := values[key]
	if !ok {
		return nil, false, nil
	}
	return value, true, nil
}

func (b *MemoryBackend) Set(_ context.Context, sessionID, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	values, ok := b.sessions[sessionID]
	if !ok {
		values = make(map[string][]byte)
		b.sessions[sessionID] = values
	}
	values[key] = append([]byte(nil), value...)
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, sessionID, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if values, ok := b.sessions[sessionID]; ok {
		delete(values, key)
	}
	return nil
}
