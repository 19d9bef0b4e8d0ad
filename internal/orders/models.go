package orders

import "time"

type Product struct {
	ID         int64  `json:"id"`
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
	Stock      int64  `json:"stock"`
}

type Table struct {
	ID             int64       `json:"id"`
	Label          string      `json:"label"`
	Status         TableStatus `json:"status"`
	CurrentOrderID *int64      `json:"currentOrderId"`
	// Filled by projections only.
	CurrentOrder *OrderSummary `json:"currentOrder,omitempty"`
}

// Bound reports whether an open order occupies the table.
func (t Table) Bound() bool { return t.CurrentOrderID != nil }

type Order struct {
	ID            int64       `json:"id"`
	TableID       int64       `json:"tableId"`
	Status        Status      `json:"status"`
	CreatedByID   int64       `json:"createdByUserId"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
	TotalCents    int64       `json:"totalCents"`
	Items         []OrderItem `json:"items"`
	TableLabel    string      `json:"tableLabel,omitempty"`
	CreatedByName string      `json:"createdByName,omitempty"`
}

type OrderItem struct {
	ID          int64  `json:"id"`
	OrderID     int64  `json:"orderId"`
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName,omitempty"`
	Qty         int64  `json:"qty"`
	PriceCents  int64  `json:"priceCents"`
}

func (it OrderItem) LineTotal() int64 { return it.Qty * it.PriceCents }

type OrderSummary struct {
	ID         int64     `json:"id"`
	Status     Status    `json:"status"`
	TotalCents int64     `json:"totalCents"`
	CreatedAt  time.Time `json:"createdAt"`
}

type User struct {
	ID     int64  `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Active bool   `json:"active"`
}

// ItemLine is one requested (product, qty) pair of an add-items call.
type ItemLine struct {
	ProductID int64 `json:"productId"`
	Qty       int64 `json:"qty"`
}
