package printing

import (
	"context"
	"encoding/json"
	"fmt"

	kafkax "github.com/ariefcatur/go-restaurant-pos/internal/kafka"
	"github.com/ariefcatur/go-restaurant-pos/internal/orders"
	"github.com/ariefcatur/go-restaurant-pos/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Worker consumes queued tickets and prints each one at most once per
// dedup window.
type Worker struct {
	Printer     orders.Printer
	Redis       *redis.Client // optional
	ServiceName string
	Log         *zap.Logger
}

// HandleTicket is installed as the consumer handler. A print failure
// releases the dedup claim and returns the error, so the consumer's retry of
// the same message prints it.
func (w *Worker) HandleTicket(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		w.Log.Warn("skipping undecodable ticket", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if env.EventType != orders.EventKitchenTicket {
		return nil
	}

	if w.Redis != nil {
		key := fmt.Sprintf(redisx.KeyDedup, w.ServiceName, env.EventID)
		first, err := redisx.Claim(ctx, w.Redis, key, redisx.TTLDedup)
		if err != nil {
			return err
		}
		if !first {
			return nil
		}
	}

	p, err := kafkax.UnwrapPayload[orders.KitchenTicketPayload](env.Payload)
	if err != nil {
		w.Log.Warn("skipping ticket with bad payload", zap.String("event_id", env.EventID), zap.Error(err))
		return nil
	}
	if err := w.Printer.PrintKitchenTicket(ctx, p.Order); err != nil {
		if w.Redis != nil {
			_ = w.Redis.Del(ctx, fmt.Sprintf(redisx.KeyDedup, w.ServiceName, env.EventID)).Err()
		}
		return err
	}
	return nil
}
