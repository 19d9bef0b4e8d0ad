package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-restaurant-pos/internal/orders"
	"github.com/jackc/pgx/v5"
)

type pgTx struct{ q querier }

func (t *pgTx) LockTable(ctx context.Context, id int64) (orders.Table, error) {
	var (
		tb     orders.Table
		status string
	)
	err := t.q.QueryRow(ctx, `
		SELECT id, label, status, current_order_id
		FROM dining_tables WHERE id = $1 FOR UPDATE`, id).
		Scan(&tb.ID, &tb.Label, &status, &tb.CurrentOrderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return orders.Table{}, orders.ErrTableNotFound
	}
	tb.Status = orders.TableStatus(status)
	return tb, err
}

func (t *pgTx) UpdateTable(ctx context.Context, tb orders.Table) error {
	ct, err := t.q.Exec(ctx, `UPDATE dining_tables SET status = $2, current_order_id = $3 WHERE id = $1`,
		tb.ID, string(tb.Status), tb.CurrentOrderID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return orders.ErrTableNotFound
	}
	return nil
}

func (t *pgTx) InsertOrder(ctx context.Context, o *orders.Order) error {
	return t.q.QueryRow(ctx, `
		INSERT INTO orders (table_id, status, created_by, total_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id`,
		o.TableID, string(o.Status), o.CreatedByID, o.TotalCents, o.CreatedAt,
	).Scan(&o.ID)
}

func (t *pgTx) LockOrder(ctx context.Context, id int64) (orders.Order, error) {
	var (
		o      orders.Order
		status string
	)
	err := t.q.QueryRow(ctx, `
		SELECT id, table_id, status, created_by, total_cents, created_at, updated_at
		FROM orders WHERE id = $1 FOR UPDATE`, id).
		Scan(&o.ID, &o.TableID, &status, &o.CreatedByID, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return orders.Order{}, orders.ErrOrderNotFound
	}
	o.Status = orders.Status(status)
	return o, err
}

func (t *pgTx) UpdateOrder(ctx context.Context, id int64, status orders.Status, totalCents int64) error {
	ct, err := t.q.Exec(ctx, `UPDATE orders SET status = $2, total_cents = $3, updated_at = now() WHERE id = $1`,
		id, string(status), totalCents)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return orders.ErrOrderNotFound
	}
	return nil
}

func (t *pgTx) OrderItems(ctx context.Context, orderID int64) ([]orders.OrderItem, error) {
	rows, err := t.q.Query(ctx, `
		SELECT id, order_id, product_id, qty, price_cents
		FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []orders.OrderItem
	for rows.Next() {
		var it orders.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Qty, &it.PriceCents); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (t *pgTx) InsertOrderItems(ctx context.Context, items []orders.OrderItem) ([]orders.OrderItem, error) {
	out := make([]orders.OrderItem, 0, len(items))
	for _, it := range items {
		err := t.q.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, qty, price_cents)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			it.OrderID, it.ProductID, it.Qty, it.PriceCents,
		).Scan(&it.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

func (t *pgTx) LockProducts(ctx context.Context, ids []int64) (map[int64]orders.Product, error) {
	rows, err := t.q.Query(ctx, `
		SELECT id, sku, name, price_cents, stock
		FROM products WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]orders.Product, len(ids))
	for rows.Next() {
		var p orders.Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.PriceCents, &p.Stock); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// DecrementStock updates nothing when stock would go negative.
func (t *pgTx) DecrementStock(ctx context.Context, productID, qty int64) error {
	ct, err := t.q.Exec(ctx, `
		UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2`, productID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return fmt.Errorf("decrement product %d by %d: no row updated", productID, qty)
	}
	return nil
}
