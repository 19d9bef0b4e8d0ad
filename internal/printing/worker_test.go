package printing

import (
	"context"
	"errors"
	"testing"

	kafkax "github.com/ariefcatur/go-restaurant-pos/internal/kafka"
	"github.com/ariefcatur/go-restaurant-pos/internal/orders"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type spoolPrinter struct {
	got []orders.Order
	err error
}

func (s *spoolPrinter) PrintKitchenTicket(_ context.Context, o orders.Order) error {
	s.got = append(s.got, o)
	return s.err
}

func ticketMessage(eventType string, payload any) kafkago.Message {
	env := orders.Envelope{
		EventID:      "ticket-1",
		EventType:    eventType,
		EventVersion: 1,
		Payload:      kafkax.MustMarshal(payload),
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func TestWorkerHandleTicket(t *testing.T) {
	order := orders.Order{ID: 5, TableLabel: "M3", Items: []orders.OrderItem{{ProductName: "Latte", Qty: 1}}}

	tests := []struct {
		name      string
		msg       kafkago.Message
		printErr  error
		wantErr   bool
		wantPrint int
	}{
		{
			name:      "prints ticket",
			msg:       ticketMessage(orders.EventKitchenTicket, orders.KitchenTicketPayload{TicketID: "ticket-1", Order: order}),
			wantPrint: 1,
		},
		{
			name: "ignores other events",
			msg:  ticketMessage(orders.EventOrderUpdated, orders.Event{OrderID: 5}),
		},
		{
			name: "skips garbage",
			msg:  kafkago.Message{Value: []byte("not json")},
		},
		{
			name:      "printer failure is returned",
			msg:       ticketMessage(orders.EventKitchenTicket, orders.KitchenTicketPayload{TicketID: "ticket-1", Order: order}),
			printErr:  errors.New("paper jam"),
			wantErr:   true,
			wantPrint: 1,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := &spoolPrinter{err: tc.printErr}
			w := &Worker{Printer: p, ServiceName: "printer", Log: zap.NewNop()}

			err := w.HandleTicket(context.Background(), tc.msg)
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Len(t, p.got, tc.wantPrint)
			if tc.wantPrint > 0 {
				assert.Equal(t, order.ID, p.got[0].ID)
				assert.Equal(t, "Latte", p.got[0].Items[0].ProductName)
			}
		})
	}
}

func TestWorkerRetryOfFailedTicketPrints(t *testing.T) {
	order := orders.Order{ID: 9, TableLabel: "M7"}
	msg := ticketMessage(orders.EventKitchenTicket, orders.KitchenTicketPayload{TicketID: "ticket-1", Order: order})
	p := &spoolPrinter{err: errors.New("paper jam")}
	w := &Worker{Printer: p, ServiceName: "printer", Log: zap.NewNop()}

	require.Error(t, w.HandleTicket(context.Background(), msg))

	p.err = nil
	require.NoError(t, w.HandleTicket(context.Background(), msg))
	require.Len(t, p.got, 2)
	assert.Equal(t, order.ID, p.got[1].ID)
}
