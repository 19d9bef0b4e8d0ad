package redisx

import (
	"context"
	"encoding/json"

	"github.com/ariefcatur/go-restaurant-pos/internal/orders"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deliverer receives relayed events; *notify.Hub satisfies it.
type Deliverer interface {
	Broadcast(ctx context.Context, ev orders.Event) error
}

// Relay fans events out across API instances over Redis pub/sub. Every
// instance publishes to the same channel and delivers what it receives to
// its own observers, so each event reaches each observer once.
type Relay struct {
	rdb     *redis.Client
	channel string
	log     *zap.Logger
}

func NewRelay(rdb *redis.Client, log *zap.Logger) *Relay {
	return &Relay{rdb: rdb, channel: ChannelEvents, log: log.Named("relay")}
}

// Broadcast publishes the event to every instance.
func (r *Relay) Broadcast(ctx context.Context, ev orders.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, r.channel, b).Err()
}

// Run subscribes and forwards events to d until ctx is cancelled.
func (r *Relay) Run(ctx context.Context, d Deliverer) error {
	sub := r.rdb.Subscribe(ctx, r.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev orders.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				r.log.Warn("bad relay payload", zap.Error(err))
				continue
			}
			if err := d.Broadcast(ctx, ev); err != nil {
				r.log.Warn("relay delivery failed", zap.String("event", ev.Name), zap.Error(err))
			}
		}
	}
}
