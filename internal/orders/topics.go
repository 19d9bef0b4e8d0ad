package orders

import "strconv"

const (
	TopicPOSEvents      = "pos.events"
	TopicKitchenTickets = "pos.kitchen.tickets"
)

// Partition key = order id (or table id for table events), so all events
// about one entity keep their order.
func PartitionKey(ev Event) []byte {
	if ev.OrderID != 0 {
		return []byte("order:" + strconv.FormatInt(ev.OrderID, 10))
	}
	return []byte("table:" + strconv.FormatInt(ev.TableID, 10))
}
