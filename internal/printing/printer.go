package printing

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	kafkax "github.com/ariefcatur/go-restaurant-pos/internal/kafka"
	"github.com/ariefcatur/go-restaurant-pos/internal/orders"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// WriterPrinter writes rendered tickets to an io.Writer (stdout, a spool
// file, a device node).
type WriterPrinter struct {
	mu  sync.Mutex
	W   io.Writer
	Log *zap.Logger
	Now func() time.Time
}

func (p *WriterPrinter) PrintKitchenTicket(_ context.Context, o orders.Order) error {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	ticket := Render(o, now())
	p.mu.Lock()
	_, err := io.WriteString(p.W, ticket)
	p.mu.Unlock()
	if err != nil {
		return err
	}
	if p.Log != nil {
		p.Log.Info("kitchen ticket printed", zap.Int64("order_id", o.ID), zap.Int("items", len(o.Items)))
	}
	return nil
}

// KafkaPrinter queues tickets on the kitchen ticket topic for cmd/printer.
type KafkaPrinter struct {
	Producer *kafkax.Producer
	Service  string
}

func (p *KafkaPrinter) PrintKitchenTicket(_ context.Context, o orders.Order) error {
	ticketID := uuid.NewString()
	env := orders.Envelope{
		EventID:       ticketID,
		EventType:     orders.EventKitchenTicket,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.Service,
		CorrelationID: string(orders.PartitionKey(orders.Event{OrderID: o.ID})),
		Payload:       kafkax.MustMarshal(orders.KitchenTicketPayload{TicketID: ticketID, Order: o}),
	}
	ok := p.Producer.Publish(orders.PartitionKey(orders.Event{OrderID: o.ID}), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventKitchenTicket)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	if !ok {
		return errors.New("ticket queue full")
	}
	return nil
}
