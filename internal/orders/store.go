package orders

import "context"

// Store is the persistence collaborator. WithinTx runs fn as one atomic,
// isolated unit: fn's error (or a panic) discards every write made through tx.
// Implementations must serialize units that lock the same rows.
type Store interface {
	Reader
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the write side of a unit of work. Lock* methods take row locks that
// are held until the unit ends; a missing row yields the matching NotFound error.
type Tx interface {
	LockTable(ctx context.Context, id int64) (Table, error)
	UpdateTable(ctx context.Context, t Table) error

	InsertOrder(ctx context.Context, o *Order) error
	LockOrder(ctx context.Context, id int64) (Order, error)
	UpdateOrder(ctx context.Context, id int64, status Status, totalCents int64) error
	// OrderItems returns the committed-so-far items of the order, in insertion order.
	OrderItems(ctx context.Context, orderID int64) ([]OrderItem, error)
	InsertOrderItems(ctx context.Context, items []OrderItem) ([]OrderItem, error)

	// LockProducts locks the given products in ascending id order and returns
	// those that exist, keyed by id.
	LockProducts(ctx context.Context, ids []int64) (map[int64]Product, error)
	DecrementStock(ctx context.Context, productID, qty int64) error
}

// OrderFilter selects orders for the list projections. Zero values mean no filter;
// Limit <= 0 means unlimited.
type OrderFilter struct {
	Status  Status
	TableID int64
	Limit   int
}

// Reader is the query side used by the read projections. Results reflect
// every unit committed before the call.
type Reader interface {
	GetOrder(ctx context.Context, id int64) (Order, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]Order, error)
	GetTable(ctx context.Context, id int64) (Table, error)
	ListTables(ctx context.Context) ([]Table, error)
	ListProducts(ctx context.Context) ([]Product, error)
}
