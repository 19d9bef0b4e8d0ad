// Package notify delivers committed changes to observers. Delivery is best
// effort: a full queue drops events and sink failures are logged, never
// returned to the mutation that produced the event.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/ariefcatur/go-restaurant-pos/internal/orders"
	"go.uber.org/zap"
)

// Sink is one delivery target for events.
type Sink interface {
	Broadcast(ctx context.Context, ev orders.Event) error
}

type SinkFunc func(ctx context.Context, ev orders.Event) error

func (f SinkFunc) Broadcast(ctx context.Context, ev orders.Event) error { return f(ctx, ev) }

// Dispatcher queues events and hands them to every sink on a single
// goroutine, so events reach each sink in publish order.
type Dispatcher struct {
	queue       chan orders.Event
	sinks       []Sink
	log         *zap.Logger
	sinkTimeout time.Duration
	done        chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(buf int, log *zap.Logger, sinks ...Sink) *Dispatcher {
	if buf <= 0 {
		buf = 1
	}
	return &Dispatcher{
		queue:       make(chan orders.Event, buf),
		sinks:       sinks,
		log:         log.Named("fanout"),
		sinkTimeout: 5 * time.Second,
		done:        make(chan struct{}),
	}
}

func (d *Dispatcher) Start() {
	go func() {
		defer close(d.done)
		for ev := range d.queue {
			d.deliver(ev)
		}
	}()
}

func (d *Dispatcher) deliver(ev orders.Event) {
	for _, s := range d.sinks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					d.log.Error("sink panicked", zap.String("event", ev.Name), zap.Any("panic", r))
				}
			}()
			ctx, cancel := context.WithTimeout(context.Background(), d.sinkTimeout)
			defer cancel()
			if err := s.Broadcast(ctx, ev); err != nil {
				d.log.Warn("sink delivery failed", zap.String("event", ev.Name), zap.Error(err))
			}
		}()
	}
}

// Publish implements orders.Notifier. It never blocks.
func (d *Dispatcher) Publish(ev orders.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	select {
	case d.queue <- ev:
	default:
		d.log.Warn("fanout queue full, event dropped",
			zap.String("event", ev.Name), zap.Int64("order_id", ev.OrderID), zap.Int64("table_id", ev.TableID))
	}
}

// Close stops accepting events and waits until queued ones are delivered.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.done
}
