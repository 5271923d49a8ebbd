package worker

import (
	"context"
	"log/slog"

	audit "gatehouse/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them. Run returns
// once the inbox is closed and drained.
type Worker struct {
	store  audit.Store
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run appends events until the inbox closes. A failed append is logged and
// skipped; audit loss never blocks the gate.
func (w *Worker) Run(ctx context.Context) {
	for event := range w.inbox {
		if err := w.store.Append(ctx, event); err != nil {
			w.logger.ErrorContext(ctx, "failed to persist audit event",
				"action", event.Action,
				"subject", event.Subject,
				"request_id", event.RequestID,
				"error", err,
			)
		}
	}
}
