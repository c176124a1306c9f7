package event

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Event is any payload dispatched on the bus. Listeners read their inputs from
// it and write their results back into it.
type Event any

// Dispatcher is what listeners and callers need to publish events.
type Dispatcher interface {
	Dispatch(ctx context.Context, name string, ev Event) error
}

// Listener handles one dispatched event. The dispatcher is passed along so
// listeners can re-dispatch follow-on events.
type Listener func(ctx context.Context, ev Event, d Dispatcher) error

var (
	ErrUnexpectedEvent = errors.New("event: unexpected event payload")
	ErrNoListener      = errors.New("event: no listener registered")
)

// Typed adapts a listener working on a concrete event type.
func Typed[T any](fn func(ctx context.Context, ev *T, d Dispatcher) error) Listener {
	return func(ctx context.Context, ev Event, d Dispatcher) error {
		typed, ok := ev.(*T)
		if !ok {
			return fmt.Errorf("%w: %T", ErrUnexpectedEvent, ev)
		}
		return fn(ctx, typed, d)
	}
}

// Subscription binds a listener to an event name with a priority.
// Higher priorities run first.
type Subscription struct {
	Name     string
	Listener Listener
	Priority int
}

// Subscriber groups the subscriptions of one handler.
type Subscriber interface {
	SubscribedEvents() []Subscription
}

// Propagation can be embedded in an event to let a listener stop the
// remaining listeners from running.
type Propagation struct {
	stopped bool
}

func (p *Propagation) StopPropagation()           { p.stopped = true }
func (p *Propagation) IsPropagationStopped() bool { return p.stopped }

type propagationStopper interface {
	IsPropagationStopped() bool
}

type registered struct {
	listener Listener
	priority int
	seq      int
}

// Bus is an in-process, synchronous event dispatcher.
type Bus struct {
	mu        sync.RWMutex
	listeners map[string][]registered
	seq       int
	logger    *log.Logger
}

// NewBus creates an empty bus. A nil logger disables dispatch logging.
func NewBus(logger *log.Logger) *Bus {
	return &Bus{
		listeners: make(map[string][]registered),
		logger:    logger,
	}
}

// AddListener registers a listener. Listeners with equal priority run in
// registration order.
func (b *Bus) AddListener(name string, l Listener, priority int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	list := append(b.listeners[name], registered{listener: l, priority: priority, seq: b.seq})
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].priority != list[j].priority {
			return list[i].priority > list[j].priority
		}
		return list[i].seq < list[j].seq
	})
	b.listeners[name] = list
}

// AddSubscriber registers every subscription of s.
func (b *Bus) AddSubscriber(s Subscriber) {
	for _, sub := range s.SubscribedEvents() {
		b.AddListener(sub.Name, sub.Listener, sub.Priority)
	}
}

// HasListeners reports whether anything listens to name.
func (b *Bus) HasListeners(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[name]) > 0
}

// RequireListeners fails on the first name nothing listens to.
func (b *Bus) RequireListeners(names ...string) error {
	for _, name := range names {
		if !b.HasListeners(name) {
			return fmt.Errorf("%w for %s", ErrNoListener, name)
		}
	}
	return nil
}

// Dispatch runs the listeners of name in priority order. The first listener
// error stops the dispatch and is returned.
func (b *Bus) Dispatch(ctx context.Context, name string, ev Event) error {
	b.mu.RLock()
	list := make([]registered, len(b.listeners[name]))
	copy(list, b.listeners[name])
	b.mu.RUnlock()

	ctx, id := ensureCorrelationID(ctx)
	if b.logger != nil {
		b.logger.Printf("DEBUG: dispatching %s (correlation %s) to %d listener(s)", name, id, len(list))
	}

	for _, r := range list {
		if err := r.listener(ctx, ev, b); err != nil {
			return fmt.Errorf("event: %s listener failed: %w", name, err)
		}
		if ps, ok := ev.(propagationStopper); ok && ps.IsPropagationStopped() {
			break
		}
	}
	return nil
}

type correlationKey struct{}

// CorrelationID returns the id shared by a dispatch and everything it re-dispatches.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

func ensureCorrelationID(ctx context.Context) (context.Context, string) {
	if id := CorrelationID(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return context.WithValue(ctx, correlationKey{}, id), id
}
