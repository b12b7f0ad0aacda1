package eventbus

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Handler consumes one published message.
type Handler func(ctx context.Context, routingKey string, payload []byte)

// InProcessBus is an in-memory publisher for local mode (no RabbitMQ).
// Messages are delivered synchronously to subscribed handlers.
type InProcessBus struct {
	mu       sync.Mutex
	handlers map[string][]Handler
	logger   *slog.Logger
}

// NewInProcessBus creates a new in-process bus.
func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &InProcessBus{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for all routing keys starting with prefix.
// The empty prefix matches everything.
func (b *InProcessBus) Subscribe(prefix string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[prefix] = append(b.handlers[prefix], handler)
}

// Publish dispatches the message synchronously to all matching handlers.
// Handler panics are not recovered; handlers are trusted in-process code.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	b.mu.Lock()
	matched := make([]Handler, 0)
	for prefix, hs := range b.handlers {
		if strings.HasPrefix(routingKey, prefix) {
			matched = append(matched, hs...)
		}
	}
	b.mu.Unlock()

	for _, h := range matched {
		h(ctx, routingKey, payload)
	}

	b.logger.Debug("message dispatched",
		"routing_key", routingKey,
		"handlers", len(matched),
	)
	return nil
}

// Close is a no-op for the in-process bus.
func (b *InProcessBus) Close() error {
	return nil
}
