package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ariefcatur/go-restaurant-pos/internal/orders"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store implements orders.Store on Postgres. Units run at READ COMMITTED with
// SELECT ... FOR UPDATE row locks; lock waits are bounded by lockTimeout.
type Store struct {
	DB          *pgxpool.Pool
	LockTimeout time.Duration
}

func NewStore(db *pgxpool.Pool, lockTimeout time.Duration) *Store {
	return &Store{DB: db, LockTimeout: lockTimeout}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx orders.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return classify(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if s.LockTimeout > 0 {
		ms := fmt.Sprintf("%dms", s.LockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`, ms); err != nil {
			return classify(err)
		}
	}
	if err := fn(ctx, &pgTx{q: tx}); err != nil {
		return classify(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// classify maps aborts the database may retry into orders.Retryable and
// leaves everything else untouched.
func classify(err error) error {
	var oe *orders.Error
	if errors.As(err, &oe) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", // serialization_failure
			"40P01", // deadlock_detected
			"55P03", // lock_not_available
			"57014": // query_canceled (statement/lock timeout)
			return orders.Retryable(err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return orders.Retryable(err)
	}
	return err
}

const orderColumns = `o.id, o.table_id, o.status, o.created_by, o.total_cents, o.created_at, o.updated_at,
	t.label, COALESCE(u.name, '')`

const orderFrom = `FROM orders o
	JOIN dining_tables t ON t.id = o.table_id
	LEFT JOIN users u ON u.id = o.created_by`

func scanOrder(row pgx.Row) (orders.Order, error) {
	var (
		o      orders.Order
		status string
	)
	err := row.Scan(&o.ID, &o.TableID, &status, &o.CreatedByID, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt,
		&o.TableLabel, &o.CreatedByName)
	o.Status = orders.Status(status)
	return o, err
}

func (s *Store) GetOrder(ctx context.Context, id int64) (orders.Order, error) {
	o, err := scanOrder(s.DB.QueryRow(ctx, `SELECT `+orderColumns+` `+orderFrom+` WHERE o.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return orders.Order{}, orders.ErrOrderNotFound
	}
	if err != nil {
		return orders.Order{}, err
	}
	list := []orders.Order{o}
	if err := loadItems(ctx, s.DB, list); err != nil {
		return orders.Order{}, err
	}
	return list[0], nil
}

func (s *Store) ListOrders(ctx context.Context, f orders.OrderFilter) ([]orders.Order, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("o.status = $%d", len(args)))
	}
	if f.TableID != 0 {
		args = append(args, f.TableID)
		where = append(where, fmt.Sprintf("o.table_id = $%d", len(args)))
	}
	q := `SELECT ` + orderColumns + ` ` + orderFrom
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY o.created_at DESC, o.id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]orders.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := loadItems(ctx, s.DB, out); err != nil {
		return nil, err
	}
	return out, nil
}

// loadItems fills Items of every order with one query.
func loadItems(ctx context.Context, q querier, list []orders.Order) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]int64, len(list))
	idx := make(map[int64]int, len(list))
	for i := range list {
		ids[i] = list[i].ID
		idx[list[i].ID] = i
		list[i].Items = []orders.OrderItem{}
	}
	rows, err := q.Query(ctx, `
		SELECT i.id, i.order_id, i.product_id, p.name, i.qty, i.price_cents
		FROM order_items i JOIN products p ON p.id = i.product_id
		WHERE i.order_id = ANY($1)
		ORDER BY i.id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var it orders.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Qty, &it.PriceCents); err != nil {
			return err
		}
		i := idx[it.OrderID]
		list[i].Items = append(list[i].Items, it)
	}
	return rows.Err()
}

const tableSelect = `
	SELECT t.id, t.label, t.status, t.current_order_id,
	       o.id, o.status, o.total_cents, o.created_at
	FROM dining_tables t
	LEFT JOIN orders o ON o.id = t.current_order_id`

func scanTable(row pgx.Row) (orders.Table, error) {
	var (
		t        orders.Table
		status   string
		oID      *int64
		oStatus  *string
		oTotal   *int64
		oCreated *time.Time
	)
	if err := row.Scan(&t.ID, &t.Label, &status, &t.CurrentOrderID, &oID, &oStatus, &oTotal, &oCreated); err != nil {
		return orders.Table{}, err
	}
	t.Status = orders.TableStatus(status)
	if oID != nil {
		t.CurrentOrder = &orders.OrderSummary{ID: *oID, Status: orders.Status(*oStatus), TotalCents: *oTotal, CreatedAt: *oCreated}
	}
	return t, nil
}

func (s *Store) GetTable(ctx context.Context, id int64) (orders.Table, error) {
	t, err := scanTable(s.DB.QueryRow(ctx, tableSelect+` WHERE t.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return orders.Table{}, orders.ErrTableNotFound
	}
	return t, err
}

func (s *Store) ListTables(ctx context.Context) ([]orders.Table, error) {
	rows, err := s.DB.Query(ctx, tableSelect+` ORDER BY t.label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]orders.Table, 0)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) ListProducts(ctx context.Context) ([]orders.Product, error) {
	rows, err := s.DB.Query(ctx, `SELECT id, sku, name, price_cents, stock FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]orders.Product, 0)
	for rows.Next() {
		var p orders.Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.PriceCents, &p.Stock); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
