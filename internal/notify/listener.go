// Package notify publishes product lifecycle changes to a Redis stream once
// they have been persisted.
package notify

import (
	"context"
	"log"
	"os"
	"time"

	"product-lifecycle-service/internal/domain"
	"product-lifecycle-service/internal/event"
	"product-lifecycle-service/internal/store"
)

// Runs after every persisting listener.
const listenerPriority = 0

// ProductData is the payload of a lifecycle message.
type ProductData struct {
	ProductID     int64  `json:"product_id"`
	Ref           string `json:"ref"`
	Visible       bool   `json:"visible"`
	OriginalID    int64  `json:"original_id,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

type Listener struct {
	publisher Publisher
	logger    *log.Logger
	now       func() time.Time
}

func NewListener(p Publisher, logger *log.Logger) *Listener {
	if logger == nil {
		logger = log.New(os.Stdout, "[notify] ", log.LstdFlags)
	}
	return &Listener{publisher: p, logger: logger, now: time.Now}
}

func (l *Listener) SubscribedEvents() []event.Subscription {
	return []event.Subscription{
		{Name: event.ProductCreate, Listener: event.Typed(l.onCreate), Priority: listenerPriority},
		{Name: event.ProductClone, Listener: event.Typed(l.onClone), Priority: listenerPriority},
		{Name: event.ProductUpdate, Listener: event.Typed(l.onUpdate), Priority: listenerPriority},
		{Name: event.ProductDelete, Listener: event.Typed(l.onDelete), Priority: listenerPriority},
		{Name: event.ProductToggleVisibility, Listener: event.Typed(l.onToggle), Priority: listenerPriority},
	}
}

func (l *Listener) onCreate(ctx context.Context, ev *event.ProductCreateEvent, _ event.Dispatcher) error {
	l.publish(ctx, event.ProductCreate, ev.Product, 0)
	return nil
}

func (l *Listener) onClone(ctx context.Context, ev *event.ProductCloneEvent, _ event.Dispatcher) error {
	var originalID int64
	if ev.OriginalProduct != nil {
		originalID = ev.OriginalProduct.ID
	}
	l.publish(ctx, event.ProductClone, ev.ClonedProduct, originalID)
	return nil
}

func (l *Listener) onUpdate(ctx context.Context, ev *event.ProductUpdateEvent, _ event.Dispatcher) error {
	l.publish(ctx, event.ProductUpdate, ev.Product, 0)
	return nil
}

func (l *Listener) onDelete(ctx context.Context, ev *event.ProductDeleteEvent, _ event.Dispatcher) error {
	l.publish(ctx, event.ProductDelete, ev.Product, 0)
	return nil
}

func (l *Listener) onToggle(ctx context.Context, ev *event.ProductToggleVisibilityEvent, _ event.Dispatcher) error {
	l.publish(ctx, event.ProductToggleVisibility, ev.Product, 0)
	return nil
}

// publish skips events dispatched inside a transaction: they belong to an
// outer operation that is not committed yet. Failures are only logged.
func (l *Listener) publish(ctx context.Context, name string, p *domain.Product, originalID int64) {
	if p == nil || store.InTx(ctx) {
		return
	}

	msg := Message{
		Type:      name,
		Timestamp: l.now().UTC(),
		Data: ProductData{
			ProductID:     p.ID,
			Ref:           p.Ref,
			Visible:       p.Visible,
			OriginalID:    originalID,
			CorrelationID: event.CorrelationID(ctx),
		},
	}
	if err := l.publisher.Publish(ctx, msg); err != nil {
		l.logger.Printf("WARN: Failed to publish %s for product %d: %v", name, p.ID, err)
	}
}
