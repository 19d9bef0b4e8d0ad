package orders

import "time"

func newOrder(tableID, createdBy int64, now time.Time) Order {
	return Order{
		TableID:     tableID,
		Status:      StatusOpen,
		CreatedByID: createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
		Items:       []OrderItem{},
	}
}

// ensureMutable rejects any change to an order in a terminal status.
func (o Order) ensureMutable() error {
	if o.Status.Terminal() {
		return ErrOrderClosed
	}
	return nil
}

// itemsFrom builds the rows for accepted lines, snapshotting each unit price.
func itemsFrom(orderID int64, lines []PricedLine) []OrderItem {
	out := make([]OrderItem, 0, len(lines))
	for _, ln := range lines {
		out = append(out, OrderItem{
			OrderID:     orderID,
			ProductID:   ln.ProductID,
			ProductName: ln.Name,
			Qty:         ln.Qty,
			PriceCents:  ln.PriceCents,
		})
	}
	return out
}

// Total is always derived from the items; there is no setter.
func Total(items []OrderItem) int64 {
	var sum int64
	for _, it := range items {
		sum += it.LineTotal()
	}
	return sum
}

// releases reports whether moving to next frees the owning table.
func releases(next Status) bool { return next.Terminal() }

// release clears the binding if it still points at orderID. The table is
// returned unchanged (ok=false) when it is bound elsewhere or not at all.
func release(t Table, orderID int64) (Table, bool) {
	if t.CurrentOrderID == nil || *t.CurrentOrderID != orderID {
		return t, false
	}
	t.CurrentOrderID = nil
	t.Status = TableFree
	return t, true
}

func bind(t Table, orderID int64) Table {
	id := orderID
	t.CurrentOrderID = &id
	t.Status = TableOccupied
	return t
}
