package events

import (
	"context"
	"log/slog"
	"sync"
)

// InMemoryNotifier is a simple implementation of the ChangeNotifier
// interface that stores registered handlers in memory and dispatches
// events to them synchronously, in registration order.
type InMemoryNotifier struct {
	handlers []ChangeHandler
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewInMemoryNotifier creates a new instance of InMemoryNotifier.
func NewInMemoryNotifier(logger *slog.Logger) *InMemoryNotifier {
	return &InMemoryNotifier{
		handlers: make([]ChangeHandler, 0),
		logger:   logger.With("component", "in_memory_notifier"),
	}
}

// RegisterHandler adds a new change handler to receive events.
func (n *InMemoryNotifier) RegisterHandler(handler ChangeHandler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers = append(n.handlers, handler)
	n.logger.Debug("registered new change handler", "handler_count", len(n.handlers))
}

// NotifyChange publishes the given event to all registered handlers.
// If any handler returns an error, the event is still delivered to all
// other handlers, and the first error encountered is returned.
func (n *InMemoryNotifier) NotifyChange(ctx context.Context, event *TaskChangeEvent) error {
	n.mu.RLock()
	handlers := make([]ChangeHandler, len(n.handlers))
	copy(handlers, n.handlers)
	n.mu.RUnlock()

	n.logger.Debug("notifying task change",
		"event_id", event.ID,
		"change_kind", event.Kind,
		"task_id", event.TaskID,
		"handler_count", len(handlers))

	var firstErr error
	for i, handler := range handlers {
		if err := handler.HandleChange(ctx, event); err != nil {
			n.logger.Error("handler failed to process change event",
				"error", err,
				"handler_index", i,
				"event_id", event.ID,
				"change_kind", event.Kind)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}
