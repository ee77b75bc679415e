package audit

import (
	"context"
	"log/slog"
)

// Worker consumes events from a channel and persists them. Append
// failures are logged and the worker keeps draining; one bad event
// must not stall the trail. On shutdown the inbox is drained before
// the worker returns.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.inbox:
			w.append(event)
		}
	}
}

func (w *Worker) append(event Event) {
	// Persist with a background context; the request that produced the
	// event may already be gone.
	if err := w.store.Append(context.Background(), event); err != nil {
		w.logger.Error("failed to append audit event",
			"error", err,
			"event_type", string(event.Kind),
			"user_id", string(event.UserID),
		)
	}
}

func (w *Worker) drain() {
	for {
		select {
		case event := <-w.inbox:
			w.append(event)
		default:
			return
		}
	}
}
