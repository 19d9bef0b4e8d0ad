// Package memstore is an in-process orders.Store. Units of work run one at a
// time against a private copy of the state that replaces the live state only
// when the unit returns nil.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ariefcatur/go-restaurant-pos/internal/orders"
	"github.com/ariefcatur/go-restaurant-pos/internal/seed"
)

type state struct {
	products map[int64]orders.Product
	tables   map[int64]orders.Table
	orders   map[int64]orders.Order
	items    []orders.OrderItem
	users    map[int64]orders.User

	nextProduct, nextTable, nextOrder, nextItem, nextUser int64
}

func newState() *state {
	return &state{
		products: map[int64]orders.Product{},
		tables:   map[int64]orders.Table{},
		orders:   map[int64]orders.Order{},
		users:    map[int64]orders.User{},
	}
}

func (s *state) clone() *state {
	c := *s
	c.products = make(map[int64]orders.Product, len(s.products))
	for k, v := range s.products {
		c.products[k] = v
	}
	c.tables = make(map[int64]orders.Table, len(s.tables))
	for k, v := range s.tables {
		if v.CurrentOrderID != nil {
			id := *v.CurrentOrderID
			v.CurrentOrderID = &id
		}
		c.tables[k] = v
	}
	c.orders = make(map[int64]orders.Order, len(s.orders))
	for k, v := range s.orders {
		c.orders[k] = v
	}
	c.users = make(map[int64]orders.User, len(s.users))
	for k, v := range s.users {
		c.users[k] = v
	}
	c.items = append([]orders.OrderItem(nil), s.items...)
	return &c
}

type Store struct {
	mu  sync.RWMutex
	st  *state
	now func() time.Time
}

func New() *Store {
	return &Store{st: newState(), now: func() time.Time { return time.Now().UTC() }}
}

// Load inserts fixture rows, skipping SKUs and labels that already exist.
func (s *Store) Load(d seed.Data) {
	for _, u := range d.Users {
		s.AddUser(u)
	}
	for _, label := range d.Tables {
		s.AddTable(label)
	}
	for _, p := range d.Products {
		s.AddProduct(p)
	}
}

func (s *Store) AddProduct(p orders.Product) orders.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ex := range s.st.products {
		if ex.SKU == p.SKU {
			return ex
		}
	}
	s.st.nextProduct++
	p.ID = s.st.nextProduct
	s.st.products[p.ID] = p
	return p
}

func (s *Store) AddTable(label string) orders.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ex := range s.st.tables {
		if ex.Label == label {
			return ex
		}
	}
	s.st.nextTable++
	t := orders.Table{ID: s.st.nextTable, Label: label, Status: orders.TableFree}
	s.st.tables[t.ID] = t
	return t
}

func (s *Store) AddUser(u orders.User) orders.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ex := range s.st.users {
		if ex.Email == u.Email {
			return ex
		}
	}
	s.st.nextUser++
	u.ID = s.st.nextUser
	s.st.users[u.ID] = u
	return u
}

// Product reads a single product row; handy for stock assertions.
func (s *Store) Product(id int64) (orders.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.st.products[id]
	return p, ok
}

// CountOrders returns the number of order rows ever committed for a table.
func (s *Store) CountOrders(tableID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, o := range s.st.orders {
		if o.TableID == tableID {
			n++
		}
	}
	return n
}

// CountItems returns the number of item rows committed for an order.
func (s *Store) CountItems(orderID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, it := range s.st.items {
		if it.OrderID == orderID {
			n++
		}
	}
	return n
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx orders.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(ctx, &tx{st: work, now: s.now}); err != nil {
		return err
	}
	s.st = work
	return nil
}

func (s *Store) GetOrder(_ context.Context, id int64) (orders.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.st.orders[id]
	if !ok {
		return orders.Order{}, orders.ErrOrderNotFound
	}
	return s.st.hydrate(o), nil
}

func (s *Store) ListOrders(_ context.Context, f orders.OrderFilter) ([]orders.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]orders.Order, 0)
	for _, o := range s.st.orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.TableID != 0 && o.TableID != f.TableID {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	for i := range out {
		out[i] = s.st.hydrate(out[i])
	}
	return out, nil
}

func (s *Store) GetTable(_ context.Context, id int64) (orders.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.st.tables[id]
	if !ok {
		return orders.Table{}, orders.ErrTableNotFound
	}
	return s.st.withSummary(t), nil
}

func (s *Store) ListTables(_ context.Context) ([]orders.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]orders.Table, 0, len(s.st.tables))
	for _, t := range s.st.tables {
		out = append(out, s.st.withSummary(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func (s *Store) ListProducts(_ context.Context) ([]orders.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]orders.Product, 0, len(s.st.products))
	for _, p := range s.st.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (st *state) hydrate(o orders.Order) orders.Order {
	o.Items = make([]orders.OrderItem, 0)
	for _, it := range st.items {
		if it.OrderID == o.ID {
			it.ProductName = st.products[it.ProductID].Name
			o.Items = append(o.Items, it)
		}
	}
	o.TableLabel = st.tables[o.TableID].Label
	o.CreatedByName = st.users[o.CreatedByID].Name
	return o
}

func (st *state) withSummary(t orders.Table) orders.Table {
	if t.CurrentOrderID != nil {
		id := *t.CurrentOrderID
		t.CurrentOrderID = &id
		if o, ok := st.orders[id]; ok {
			t.CurrentOrder = &orders.OrderSummary{ID: o.ID, Status: o.Status, TotalCents: o.TotalCents, CreatedAt: o.CreatedAt}
		}
	}
	return t
}

// SetPrice changes a product's list price. Existing order items keep their snapshot.
func (s *Store) SetPrice(id, priceCents int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.st.products[id]
	if !ok {
		return false
	}
	p.PriceCents = priceCents
	s.st.products[id] = p
	return true
}
