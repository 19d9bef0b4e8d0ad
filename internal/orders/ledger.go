package orders

import (
	"context"
	"sort"
)

// PricedLine is an accepted ItemLine with the unit price captured at decrement time.
type PricedLine struct {
	ItemLine
	PriceCents int64
	Name       string
}

// Ledger is the stock-accounting side of a unit of work. It never opens its
// own transaction: callers pass the Tx of the unit the decrement belongs to.
type Ledger struct{}

// ReserveAndDecrement checks and decrements a single product and returns its
// price snapshot.
func (Ledger) ReserveAndDecrement(ctx context.Context, tx Tx, productID, qty int64) (int64, error) {
	priced, err := Ledger{}.DecrementMany(ctx, tx, []ItemLine{{ProductID: productID, Qty: qty}})
	if err != nil {
		return 0, err
	}
	return priced[0].PriceCents, nil
}

// DecrementMany locks every referenced product, validates all lines against
// the locked stock, and only then applies the aggregated decrements. Lines for
// the same product are checked cumulatively; the first offending line names the
// error. Nothing is written when any line fails.
func (Ledger) DecrementMany(ctx context.Context, tx Tx, lines []ItemLine) ([]PricedLine, error) {
	if len(lines) == 0 {
		return nil, invalidItems("items must not be empty")
	}
	ids := make([]int64, 0, len(lines))
	seen := make(map[int64]bool, len(lines))
	for _, ln := range lines {
		if ln.ProductID <= 0 {
			return nil, invalidItems("productId must be positive")
		}
		if ln.Qty <= 0 {
			return nil, invalidItems("qty must be positive")
		}
		if !seen[ln.ProductID] {
			seen[ln.ProductID] = true
			ids = append(ids, ln.ProductID)
		}
	}
	// ascending lock order keeps concurrent units from deadlocking each other
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	products, err := tx.LockProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	want := make(map[int64]int64, len(ids))
	out := make([]PricedLine, 0, len(lines))
	for _, ln := range lines {
		p, ok := products[ln.ProductID]
		if !ok {
			return nil, productNotFound(ln.ProductID)
		}
		if ln.Qty > p.Stock-want[p.ID] {
			return nil, insufficientStock(p)
		}
		want[p.ID] += ln.Qty
		out = append(out, PricedLine{ItemLine: ln, PriceCents: p.PriceCents, Name: p.Name})
	}

	for _, id := range ids {
		if err := tx.DecrementStock(ctx, id, want[id]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
