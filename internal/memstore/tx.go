package memstore

import (
	"context"
	"fmt"
	"time"

	"github.com/ariefcatur/go-restaurant-pos/internal/orders"
)

// tx mutates a private copy of the state. The store's write lock is held for
// the whole unit, which makes every lock below trivially granted.
type tx struct {
	st  *state
	now func() time.Time
}

func (t *tx) LockTable(_ context.Context, id int64) (orders.Table, error) {
	tb, ok := t.st.tables[id]
	if !ok {
		return orders.Table{}, orders.ErrTableNotFound
	}
	return tb, nil
}

func (t *tx) UpdateTable(_ context.Context, tb orders.Table) error {
	if _, ok := t.st.tables[tb.ID]; !ok {
		return orders.ErrTableNotFound
	}
	if tb.CurrentOrderID != nil {
		id := *tb.CurrentOrderID
		if _, ok := t.st.orders[id]; !ok {
			return fmt.Errorf("bind table %d: %w", tb.ID, orders.ErrOrderNotFound)
		}
		tb.CurrentOrderID = &id
	}
	tb.CurrentOrder = nil
	t.st.tables[tb.ID] = tb
	return nil
}

func (t *tx) InsertOrder(_ context.Context, o *orders.Order) error {
	if _, ok := t.st.tables[o.TableID]; !ok {
		return orders.ErrTableNotFound
	}
	t.st.nextOrder++
	o.ID = t.st.nextOrder
	row := *o
	row.Items = nil
	t.st.orders[o.ID] = row
	return nil
}

func (t *tx) LockOrder(_ context.Context, id int64) (orders.Order, error) {
	o, ok := t.st.orders[id]
	if !ok {
		return orders.Order{}, orders.ErrOrderNotFound
	}
	return o, nil
}

func (t *tx) UpdateOrder(_ context.Context, id int64, status orders.Status, totalCents int64) error {
	o, ok := t.st.orders[id]
	if !ok {
		return orders.ErrOrderNotFound
	}
	o.Status = status
	o.TotalCents = totalCents
	o.UpdatedAt = t.now()
	t.st.orders[id] = o
	return nil
}

func (t *tx) OrderItems(_ context.Context, orderID int64) ([]orders.OrderItem, error) {
	var out []orders.OrderItem
	for _, it := range t.st.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (t *tx) InsertOrderItems(_ context.Context, items []orders.OrderItem) ([]orders.OrderItem, error) {
	out := make([]orders.OrderItem, 0, len(items))
	for _, it := range items {
		if _, ok := t.st.orders[it.OrderID]; !ok {
			return nil, orders.ErrOrderNotFound
		}
		if _, ok := t.st.products[it.ProductID]; !ok {
			return nil, orders.ErrProductNotFound
		}
		if it.Qty <= 0 {
			return nil, fmt.Errorf("order item qty %d: must be positive", it.Qty)
		}
		t.st.nextItem++
		it.ID = t.st.nextItem
		t.st.items = append(t.st.items, it)
		out = append(out, it)
	}
	return out, nil
}

func (t *tx) LockProducts(_ context.Context, ids []int64) (map[int64]orders.Product, error) {
	out := make(map[int64]orders.Product, len(ids))
	for _, id := range ids {
		if p, ok := t.st.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// DecrementStock mirrors the CHECK (stock >= 0) constraint of the SQL schema.
func (t *tx) DecrementStock(_ context.Context, productID, qty int64) error {
	p, ok := t.st.products[productID]
	if !ok {
		return orders.ErrProductNotFound
	}
	if p.Stock-qty < 0 {
		return fmt.Errorf("decrement product %d by %d: stock would go negative", productID, qty)
	}
	p.Stock -= qty
	t.st.products[productID] = p
	return nil
}
