package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ariefcatur/go-restaurant-pos/internal/orders"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"serialization", &pgconn.PgError{Code: "40001"}, true},
		{"lock timeout", &pgconn.PgError{Code: "55P03"}, true},
		{"canceled", &pgconn.PgError{Code: "57014"}, true},
		{"deadline", context.DeadlineExceeded, true},
		{"check violation", &pgconn.PgError{Code: "23514"}, false},
		{"plain", errors.New("boom"), false},
		{"domain error kept", orders.ErrOrderClosed, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(tc.err)
			assert.Equal(t, tc.retryable, errors.Is(got, orders.ErrRetryable))
			assert.ErrorIs(t, got, tc.err)
		})
	}
}

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("POS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POS_TEST_POSTGRES_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool))
	return pool
}

func insertFixture(t *testing.T, pool *pgxpool.Pool, stock int64) (tableID, productID, userID int64) {
	t.Helper()
	ctx := context.Background()
	tag := uuid.NewString()[:8]
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO dining_tables (label) VALUES ($1) RETURNING id`, "T-"+tag).Scan(&tableID))
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO products (sku, name, price_cents, stock) VALUES ($1, 'Test Latte', 350, $2) RETURNING id`,
		"SKU-"+tag, stock).Scan(&productID))
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO users (email, name, role) VALUES ($1, 'Tester', 'WAITER') RETURNING id`,
		tag+"@test").Scan(&userID))
	return
}

func TestServiceOnPostgres(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	store := NewStore(pool, 2*time.Second)
	svc := orders.NewService(store)
	tableID, productID, userID := insertFixture(t, pool, 5)

	o, created, err := svc.OpenOrder(ctx, tableID, userID)
	require.NoError(t, err)
	require.True(t, created)

	again, created, err := svc.OpenOrder(ctx, tableID, userID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, o.ID, again.ID)

	got, err := svc.AddItems(ctx, o.ID, []orders.ItemLine{{ProductID: productID, Qty: 5}})
	require.NoError(t, err)
	assert.Equal(t, int64(1750), got.TotalCents)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Test Latte", got.Items[0].ProductName)

	_, err = svc.AddItems(ctx, o.ID, []orders.ItemLine{{ProductID: productID, Qty: 1}})
	require.ErrorIs(t, err, orders.ErrInsufficientStock)

	paid, err := svc.Pay(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPaid, paid.Status)

	tb, err := svc.GetTable(ctx, tableID)
	require.NoError(t, err)
	assert.Equal(t, orders.TableFree, tb.Status)
	assert.Nil(t, tb.CurrentOrderID)
}

func TestConcurrentAddItemsOnPostgres(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	svc := orders.NewService(NewStore(pool, 2*time.Second))
	tableID, productID, userID := insertFixture(t, pool, 3)

	o, _, err := svc.OpenOrder(ctx, tableID, userID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.AddItems(ctx, o.ID, []orders.ItemLine{{ProductID: productID, Qty: 2}})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, orders.ErrInsufficientStock)
	}
	assert.Equal(t, 1, ok)

	var stock int64
	require.NoError(t, pool.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock))
	assert.Equal(t, int64(1), stock)
}
