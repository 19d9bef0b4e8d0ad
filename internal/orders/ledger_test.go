package orders_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/ariefcatur/go-restaurant-pos/internal/memstore"
	"github.com/ariefcatur/go-restaurant-pos/internal/orders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerDecrementMany(t *testing.T) {
	tests := []struct {
		name      string
		lines     []orders.ItemLine
		wantErr   error
		wantID    int64
		wantStock map[string]int64
	}{
		{
			name:      "single line",
			lines:     []orders.ItemLine{{ProductID: 1, Qty: 3}},
			wantStock: map[string]int64{"A": 2, "B": 2},
		},
		{
			name:      "same product twice within stock",
			lines:     []orders.ItemLine{{ProductID: 1, Qty: 2}, {ProductID: 1, Qty: 3}},
			wantStock: map[string]int64{"A": 0, "B": 2},
		},
		{
			name:    "same product twice over stock",
			lines:   []orders.ItemLine{{ProductID: 1, Qty: 3}, {ProductID: 1, Qty: 3}},
			wantErr: orders.ErrInsufficientStock,
			wantID:  1,
		},
		{
			name: "huge quantities after a valid line",
			lines: []orders.ItemLine{
				{ProductID: 1, Qty: 1},
				{ProductID: 1, Qty: math.MaxInt64},
				{ProductID: 1, Qty: math.MaxInt64},
				{ProductID: 1, Qty: 3},
			},
			wantErr: orders.ErrInsufficientStock,
			wantID:  1,
		},
		{
			name:    "single huge quantity",
			lines:   []orders.ItemLine{{ProductID: 2, Qty: math.MaxInt64}},
			wantErr: orders.ErrInsufficientStock,
			wantID:  2,
		},
		{
			name:    "first offending line wins",
			lines:   []orders.ItemLine{{ProductID: 2, Qty: 3}, {ProductID: 9, Qty: 1}},
			wantErr: orders.ErrInsufficientStock,
			wantID:  2,
		},
		{
			name:    "unknown product before short one",
			lines:   []orders.ItemLine{{ProductID: 9, Qty: 1}, {ProductID: 2, Qty: 3}},
			wantErr: orders.ErrProductNotFound,
			wantID:  9,
		},
		{
			name:    "zero qty",
			lines:   []orders.ItemLine{{ProductID: 1, Qty: 0}},
			wantErr: orders.ErrInvalidItems,
		},
		{
			name:    "non positive product",
			lines:   []orders.ItemLine{{ProductID: -1, Qty: 1}},
			wantErr: orders.ErrInvalidItems,
		},
		{
			name:    "empty",
			wantErr: orders.ErrInvalidItems,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st := memstore.New()
			a := st.AddProduct(orders.Product{SKU: "A", Name: "Alpha", PriceCents: 100, Stock: 5})
			b := st.AddProduct(orders.Product{SKU: "B", Name: "Beta", PriceCents: 250, Stock: 2})
			require.Equal(t, int64(1), a.ID)
			require.Equal(t, int64(2), b.ID)

			var priced []orders.PricedLine
			err := st.WithinTx(context.Background(), func(ctx context.Context, tx orders.Tx) error {
				var err error
				priced, err = orders.Ledger{}.DecrementMany(ctx, tx, tc.lines)
				return err
			})

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				if tc.wantID != 0 {
					var oe *orders.Error
					require.True(t, errors.As(err, &oe))
					assert.Equal(t, tc.wantID, oe.ProductID)
				}
				pa, _ := st.Product(a.ID)
				pb, _ := st.Product(b.ID)
				assert.Equal(t, int64(5), pa.Stock)
				assert.Equal(t, int64(2), pb.Stock)
				return
			}

			require.NoError(t, err)
			require.Len(t, priced, len(tc.lines))
			for i, p := range priced {
				assert.Equal(t, tc.lines[i].ProductID, p.ProductID)
				assert.Equal(t, int64(100), p.PriceCents)
				assert.Equal(t, "Alpha", p.Name)
			}
			pa, _ := st.Product(a.ID)
			pb, _ := st.Product(b.ID)
			assert.Equal(t, tc.wantStock["A"], pa.Stock)
			assert.Equal(t, tc.wantStock["B"], pb.Stock)
		})
	}
}

func TestLedgerReserveAndDecrement(t *testing.T) {
	st := memstore.New()
	p := st.AddProduct(orders.Product{SKU: "A", Name: "Alpha", PriceCents: 120, Stock: 1})

	var price int64
	err := st.WithinTx(context.Background(), func(ctx context.Context, tx orders.Tx) error {
		var err error
		price, err = orders.Ledger{}.ReserveAndDecrement(ctx, tx, p.ID, 1)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(120), price)

	err = st.WithinTx(context.Background(), func(ctx context.Context, tx orders.Tx) error {
		_, err := orders.Ledger{}.ReserveAndDecrement(ctx, tx, p.ID, 1)
		return err
	})
	assert.ErrorIs(t, err, orders.ErrInsufficientStock)
	got, _ := st.Product(p.ID)
	assert.Zero(t, got.Stock)
}
