package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	audit "gatehouse/pkg/platform/audit"
	"gatehouse/pkg/platform/audit/worker"
	"gatehouse/pkg/requestcontext"
)

// ErrBufferFull is returned by Emit in async mode when the worker falls behind.
var ErrBufferFull = errors.New("audit buffer full")

// Publisher enriches events with request metadata and hands them to a store,
// either inline or through a buffered worker.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger
	buffer int

	events    chan audit.Event
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to async mode with a buffer of n events.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		p.buffer = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.buffer > 0 {
		p.events = make(chan audit.Event, p.buffer)
		p.done = make(chan struct{})
		w := worker.NewWorker(store, p.events, p.logger)
		go func() {
			defer close(p.done)
			w.Run(context.Background())
		}()
	}
	return p
}

// Emit records an event. Missing timestamp, category and request metadata are
// filled from ctx.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	client := requestcontext.ClientOf(ctx)
	if event.ClientIP == "" {
		event.ClientIP = client.IP
	}
	if event.Terminal == "" {
		event.Terminal = client.Terminal
	}

	if p.events == nil {
		return p.store.Append(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return p.store.Append(ctx, event)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case p.events <- event:
		return nil
	default:
		p.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"action", event.Action,
			"subject", event.Subject,
		)
		return ErrBufferFull
	}
}

// Close stops accepting buffered events and waits for the worker to drain.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		if p.events == nil {
			return
		}
		p.mu.Lock()
		p.closed = true
		close(p.events)
		p.mu.Unlock()
		<-p.done
	})
}
