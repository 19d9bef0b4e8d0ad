package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/ariefcatur/go-restaurant-pos/internal/orders"
	"github.com/ariefcatur/go-restaurant-pos/internal/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinTxRollsBackOnError(t *testing.T) {
	s := New()
	p := s.AddProduct(orders.Product{SKU: "A", Name: "Alpha", PriceCents: 100, Stock: 3})
	boom := errors.New("boom")

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx orders.Tx) error {
		require.NoError(t, tx.DecrementStock(ctx, p.ID, 2))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, ok := s.Product(p.ID)
	require.True(t, ok)
	assert.Equal(t, int64(3), got.Stock)
}

func TestWithinTxRollsBackOnPanic(t *testing.T) {
	s := New()
	tb := s.AddTable("T1")

	assert.Panics(t, func() {
		_ = s.WithinTx(context.Background(), func(ctx context.Context, tx orders.Tx) error {
			o := orders.Order{TableID: tb.ID, Status: orders.StatusOpen}
			require.NoError(t, tx.InsertOrder(ctx, &o))
			panic("mid-unit")
		})
	})
	assert.Equal(t, 0, s.CountOrders(tb.ID))

	// the store lock was released by the panic
	err := s.WithinTx(context.Background(), func(context.Context, orders.Tx) error { return nil })
	assert.NoError(t, err)
}

func TestDecrementStockNeverNegative(t *testing.T) {
	s := New()
	p := s.AddProduct(orders.Product{SKU: "A", Name: "Alpha", Stock: 1})

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx orders.Tx) error {
		return tx.DecrementStock(ctx, p.ID, 2)
	})
	require.Error(t, err)
	got, _ := s.Product(p.ID)
	assert.Equal(t, int64(1), got.Stock)
}

func TestUpdateTableRequiresExistingOrder(t *testing.T) {
	s := New()
	tb := s.AddTable("T1")
	missing := int64(42)
	tb.CurrentOrderID = &missing
	tb.Status = orders.TableOccupied

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx orders.Tx) error {
		return tx.UpdateTable(ctx, tb)
	})
	assert.ErrorIs(t, err, orders.ErrOrderNotFound)

	got, err := s.GetTable(context.Background(), tb.ID)
	require.NoError(t, err)
	assert.False(t, got.Bound())
}

func TestLoadIsIdempotent(t *testing.T) {
	s := New()
	s.Load(seed.Default())
	s.Load(seed.Default())

	ts, err := s.ListTables(context.Background())
	require.NoError(t, err)
	assert.Len(t, ts, len(seed.Default().Tables))

	ps, err := s.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Len(t, ps, len(seed.Default().Products))
	for i := 1; i < len(ps); i++ {
		assert.LessOrEqual(t, ps[i-1].Name, ps[i].Name)
	}
}

func TestListOrdersFilterAndLimit(t *testing.T) {
	s := New()
	t1 := s.AddTable("T1")
	t2 := s.AddTable("T2")
	ctx := context.Background()

	for _, tb := range []orders.Table{t1, t1, t2} {
		err := s.WithinTx(ctx, func(ctx context.Context, tx orders.Tx) error {
			o := orders.Order{TableID: tb.ID, Status: orders.StatusOpen}
			return tx.InsertOrder(ctx, &o)
		})
		require.NoError(t, err)
	}

	all, err := s.ListOrders(ctx, orders.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, int64(3), all[0].ID, "newest first")

	byTable, err := s.ListOrders(ctx, orders.OrderFilter{TableID: t1.ID})
	require.NoError(t, err)
	assert.Len(t, byTable, 2)

	limited, err := s.ListOrders(ctx, orders.OrderFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = s.GetOrder(ctx, 99)
	assert.ErrorIs(t, err, orders.ErrOrderNotFound)
}
