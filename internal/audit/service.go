package audit

import (
	"context"
	"sync"
)

// Sink persists audit events. The memory sink keeps tests self-contained; the
// Kafka sink is the production fan-out.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// MemorySink is an in-memory append-only sink.
type MemorySink struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of everything appended so far.
func (s *MemorySink) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event(nil), s.events...)
}
