package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit events from a channel and hands them to the sink. A
// failing sink is logged and skipped; journeys must not stall because the
// audit trail hiccuped.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "failed to append audit event",
					"action", event.Action,
					"journey_kind", event.JourneyKind,
					"error", err.Error(),
				)
			}
		}
	}
}
