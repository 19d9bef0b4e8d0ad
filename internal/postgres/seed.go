package postgres

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-restaurant-pos/internal/seed"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Seed upserts fixture rows in one transaction. Existing tables keep their
// state; products get their price and stock reset.
func Seed(ctx context.Context, pool *pgxpool.Pool, d seed.Data) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, u := range d.Users {
		if _, err := tx.Exec(ctx, `
			INSERT INTO users (email, name, role, active) VALUES ($1, $2, $3, $4)
			ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, role = EXCLUDED.role, active = EXCLUDED.active`,
			u.Email, u.Name, u.Role, u.Active); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
	}
	for _, label := range d.Tables {
		if _, err := tx.Exec(ctx, `
			INSERT INTO dining_tables (label, status) VALUES ($1, 'FREE')
			ON CONFLICT (label) DO NOTHING`, label); err != nil {
			return fmt.Errorf("seed table %s: %w", label, err)
		}
	}
	for _, p := range d.Products {
		if _, err := tx.Exec(ctx, `
			INSERT INTO products (sku, name, price_cents, stock) VALUES ($1, $2, $3, $4)
			ON CONFLICT (sku) DO UPDATE SET name = EXCLUDED.name, price_cents = EXCLUDED.price_cents,
				stock = EXCLUDED.stock, updated_at = now()`,
			p.SKU, p.Name, p.PriceCents, p.Stock); err != nil {
			return fmt.Errorf("seed product %s: %w", p.SKU, err)
		}
	}
	return tx.Commit(ctx)
}
