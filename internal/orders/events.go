package orders

import (
	"encoding/json"
	"time"
)

// Observer-facing event names.
const (
	EventOrderNew     = "order:new"
	EventOrderUpdated = "order:updated"
	EventTableUpdated = "table:updated"
)

// Event carries identifiers only; observers re-query current state.
type Event struct {
	Name    string `json:"event"`
	OrderID int64  `json:"orderId,omitempty"`
	TableID int64  `json:"tableId,omitempty"`
}

func orderNew(orderID, tableID int64) Event {
	return Event{Name: EventOrderNew, OrderID: orderID, TableID: tableID}
}

func orderUpdated(orderID int64) Event {
	return Event{Name: EventOrderUpdated, OrderID: orderID}
}

func tableUpdated(tableID int64) Event {
	return Event{Name: EventTableUpdated, TableID: tableID}
}

// Envelope wraps events and tickets on the Kafka stream.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

const EventKitchenTicket = "KitchenTicket"

type KitchenTicketPayload struct {
	TicketID string `json:"ticket_id"`
	Order    Order  `json:"order"`
}
