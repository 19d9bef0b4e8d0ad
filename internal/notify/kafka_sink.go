package notify

import (
	"context"
	"errors"
	"time"

	kafkax "github.com/ariefcatur/go-restaurant-pos/internal/kafka"
	"github.com/ariefcatur/go-restaurant-pos/internal/orders"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

var errDropped = errors.New("producer dropped message")

// KafkaSink appends every event to the pos.events stream for consumers
// outside this process.
type KafkaSink struct {
	Producer *kafkax.Producer
	Service  string
}

func (k *KafkaSink) Broadcast(_ context.Context, ev orders.Event) error {
	env := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     ev.Name,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      k.Service,
		CorrelationID: string(orders.PartitionKey(ev)),
		Payload:       kafkax.MustMarshal(ev),
	}
	ok := k.Producer.Publish(orders.PartitionKey(ev), kafkax.MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(ev.Name)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
	if !ok {
		return errDropped
	}
	return nil
}
