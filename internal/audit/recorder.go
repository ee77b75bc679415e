package audit

import (
	"context"
	"log/slog"
	"time"
)

// Trail is what the engine records against. Recording is best effort
// by contract: implementations log failures to the operator channel
// and never propagate them, so audit problems cannot fail a write,
// read, or revoke.
type Trail interface {
	Record(ctx context.Context, event Event)
}

// Recorder appends events inline. The default Trail for tests and
// single-process deployments.
type Recorder struct {
	store  Store
	clock  func() time.Time
	logger *slog.Logger
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithRecorderClock sets the clock function for testability.
func WithRecorderClock(clock func() time.Time) RecorderOption {
	return func(r *Recorder) {
		if clock != nil {
			r.clock = clock
		}
	}
}

func NewRecorder(store Store, logger *slog.Logger, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:  store,
		clock:  time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Recorder) Record(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = r.clock()
	}
	if err := r.store.Append(ctx, event); err != nil {
		r.logger.ErrorContext(ctx, "failed to append audit event",
			"error", err,
			"event_type", string(event.Kind),
			"user_id", string(event.UserID),
		)
	}
}

// ChannelRecorder hands events to a background worker over a buffered
// channel so recording never blocks the request path. When the buffer
// is full the event is dropped and the drop is logged.
type ChannelRecorder struct {
	inbox  chan<- Event
	clock  func() time.Time
	logger *slog.Logger
}

func NewChannelRecorder(inbox chan<- Event, logger *slog.Logger) *ChannelRecorder {
	return &ChannelRecorder{
		inbox:  inbox,
		clock:  time.Now,
		logger: logger,
	}
}

func (r *ChannelRecorder) Record(ctx context.Context, event Event) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = r.clock()
	}
	select {
	case r.inbox <- event:
	default:
		r.logger.ErrorContext(ctx, "audit inbox full, dropping event",
			"event_type", string(event.Kind),
			"user_id", string(event.UserID),
		)
	}
}
