package audit

import (
	"context"
	"time"
)

// Publisher captures structured audit events. Events flow through a buffered
// inbox so request handling never waits on the sink.
type Publisher struct {
	inbox chan Event
}

func NewPublisher(buffer int) *Publisher {
	return &Publisher{inbox: make(chan Event, buffer)}
}

// Emit queues an event for the worker. It blocks only when the buffer is full
// and then honours context cancellation.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Inbox exposes the event channel for the worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}
