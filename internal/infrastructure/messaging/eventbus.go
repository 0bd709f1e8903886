// Package messaging delivers domain events published by the application
// services to in-process subscribers.
//
// Delivery is synchronous: Publish returns after every handler ran, so audit
// lines and metrics are written before the command prints its result.
package messaging

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/recyclify/recyclify-client/internal/domain/shared"
	"github.com/recyclify/recyclify-client/internal/infrastructure/metrics"
	"github.com/recyclify/recyclify-client/pkg/logger"
)

var (
	ErrEventBusClosed = errors.New("event bus is closed")
	errNilHandler     = errors.New("handler cannot be nil")
)

// ══════════════════════════════════════════════════════════════════════════════
// MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// Middleware wraps every handler the bus runs.
type Middleware func(shared.EventHandler) shared.EventHandler

// RecoveryMiddleware turns a handler panic into an error.
func RecoveryMiddleware(log *logger.Logger) Middleware {
	return func(next shared.EventHandler) shared.EventHandler {
		return func(event shared.Event) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("handler panic recovered",
						logger.String("event_type", string(event.EventType())),
						logger.Any("panic", r),
						logger.String("stack", string(debug.Stack())),
					)
					err = fmt.Errorf("handler panic: %v", r)
				}
			}()
			return next(event)
		}
	}
}

// LoggingMiddleware logs failed handlers at error and the rest at debug.
func LoggingMiddleware(log *logger.Logger) Middleware {
	return func(next shared.EventHandler) shared.EventHandler {
		return func(event shared.Event) error {
			start := time.Now()
			err := next(event)
			fields := []logger.Field{
				logger.String("event_type", string(event.EventType())),
				logger.Latency(time.Since(start)),
			}
			if err != nil {
				log.Error("handler failed", append(fields, logger.Err(err))...)
				return err
			}
			log.Debug("handler completed", fields...)
			return nil
		}
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// BUS
// ══════════════════════════════════════════════════════════════════════════════

type subscription struct {
	eventType shared.EventType // "" matches every event
	handler   shared.EventHandler
}

// InMemoryEventBus is an in-process shared.EventBus. Handlers run in
// subscription order on the publishing goroutine.
type InMemoryEventBus struct {
	log *logger.Logger

	mu          sync.RWMutex
	subs        []subscription
	middlewares []Middleware
	closed      bool
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)

// Config configures an InMemoryEventBus.
type Config struct {
	Logger *logger.Logger
}

// NewInMemoryEventBus creates a bus with recovery and logging middleware.
func NewInMemoryEventBus(cfg Config) *InMemoryEventBus {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.With(logger.Component("eventbus"))

	return &InMemoryEventBus{
		log:         log,
		middlewares: []Middleware{RecoveryMiddleware(log), LoggingMiddleware(log)},
	}
}

// Use appends middleware. It applies from the next Publish on.
func (b *InMemoryEventBus) Use(m Middleware) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.middlewares = append(b.middlewares, m)
}

// Subscribe registers a handler for one event type.
func (b *InMemoryEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	if eventType == "" {
		return errors.New("event type cannot be empty")
	}
	return b.add(subscription{eventType: eventType, handler: handler})
}

// SubscribeAll registers a handler for every event.
func (b *InMemoryEventBus) SubscribeAll(handler shared.EventHandler) error {
	return b.add(subscription{handler: handler})
}

func (b *InMemoryEventBus) add(s subscription) error {
	if s.handler == nil {
		return errNilHandler
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrEventBusClosed
	}
	b.subs = append(b.subs, s)
	return nil
}

// Publish runs every matching handler. Handler errors are logged, not
// returned: the change the event reports has already happened.
func (b *InMemoryEventBus) Publish(event shared.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrEventBusClosed
	}
	var matched []shared.EventHandler
	for _, s := range b.subs {
		if s.eventType == "" || s.eventType == event.EventType() {
			matched = append(matched, s.handler)
		}
	}
	middlewares := b.middlewares
	b.mu.RUnlock()

	for _, h := range matched {
		for i := len(middlewares) - 1; i >= 0; i-- {
			h = middlewares[i](h)
		}
		_ = h(event)
	}
	return nil
}

// Close stops accepting events. Calling it twice is harmless.
func (b *InMemoryEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// AuditHandler logs every event at info level with its payload.
func AuditHandler(log *logger.Logger) shared.EventHandler {
	return func(event shared.Event) error {
		fields := []logger.Field{
			logger.String("event_type", string(event.EventType())),
			logger.String("aggregate_id", event.AggregateID()),
		}
		for k, v := range event.Payload() {
			fields = append(fields, logger.Any(k, v))
		}
		log.Info("event", fields...)
		return nil
	}
}

// SessionMetricsHandler counts profile fetches from session events.
// Subscribe it to EventSessionLoaded and EventSessionFailed.
func SessionMetricsHandler(rec metrics.Recorder) shared.EventHandler {
	return func(event shared.Event) error {
		switch event.EventType() {
		case shared.EventSessionLoaded:
			rec.RecordSessionFetch(true)
		case shared.EventSessionFailed:
			rec.RecordSessionFetch(false)
		}
		return nil
	}
}
