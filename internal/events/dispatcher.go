// Package events runs post-commit side effects of order writes. Handlers run after the order
// transaction has committed; their failures are logged and never reach the caller.
package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
)

// EventType represents the type of order event
type EventType string

const (
	EventTypeOrderPlaced        EventType = "order.placed"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
)

// OrderEvent is dispatched after an order write commits
type OrderEvent struct {
	Type           EventType
	Order          *domain.Order
	PreviousStatus domain.OrderStatus
	OccurredAt     time.Time
}

// Handler reacts to an order event
type Handler interface {
	Name() string
	Handle(ctx context.Context, event OrderEvent) error
}

// Dispatcher fans committed order events out to handlers on a background goroutine
type Dispatcher struct {
	handlers []Handler
	timeout  time.Duration
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Each event gets timeout to run all handlers.
func NewDispatcher(logger *zap.Logger, timeout time.Duration, handlers ...Handler) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		handlers: handlers,
		timeout:  timeout,
		logger:   logger,
	}
}

// Dispatch returns immediately. The request context's values are kept but its cancellation is not,
// so handlers still run after the HTTP response is written.
func (d *Dispatcher) Dispatch(ctx context.Context, event OrderEvent) {
	if len(d.handlers) == 0 {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		for _, h := range d.handlers {
			d.run(ctx, h, event)
		}
	}()
}

func (d *Dispatcher) run(ctx context.Context, h Handler, event OrderEvent) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Order event handler panicked",
				zap.String("handler", h.Name()),
				zap.String("event", string(event.Type)),
				zap.Any("panic", r),
			)
		}
	}()

	if err := h.Handle(ctx, event); err != nil {
		d.logger.Error("Order event handler failed",
			zap.String("handler", h.Name()),
			zap.String("event", string(event.Type)),
			zap.String("order_id", event.Order.ID.String()),
			zap.Error(err),
		)
	}
}

// Close waits for in-flight dispatches to finish
func (d *Dispatcher) Close() {
	d.wg.Wait()
}
