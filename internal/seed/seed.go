// Package seed holds the fixture data used to bootstrap a fresh floor:
// one user per role, tables M1..M10 and a small catalog.
package seed

import (
	"fmt"

	"github.com/ariefcatur/go-restaurant-pos/internal/orders"
)

type Data struct {
	Users    []orders.User
	Tables   []string
	Products []orders.Product
}

func Default() Data {
	d := Data{
		Users: []orders.User{
			{Email: "admin@gastromaster.local", Name: "Admin", Role: "ADMIN", Active: true},
			{Email: "waiter@gastromaster.local", Name: "Waiter", Role: "WAITER", Active: true},
			{Email: "kitchen@gastromaster.local", Name: "Kitchen", Role: "KITCHEN", Active: true},
			{Email: "cashier@gastromaster.local", Name: "Cashier", Role: "CASHIER", Active: true},
		},
		Products: []orders.Product{
			{SKU: "CAF-ESP-001", Name: "Espresso", PriceCents: 200, Stock: 200},
			{SKU: "CAF-LAT-002", Name: "Latte", PriceCents: 350, Stock: 120},
			{SKU: "SAN-JAM-003", Name: "Ham & Cheese Sandwich", PriceCents: 550, Stock: 60},
			{SKU: "JUG-NAR-004", Name: "Orange Juice", PriceCents: 300, Stock: 90},
			{SKU: "POS-TOR-005", Name: "Cake", PriceCents: 450, Stock: 40},
		},
	}
	for i := 1; i <= 10; i++ {
		d.Tables = append(d.Tables, fmt.Sprintf("M%d", i))
	}
	return d
}
