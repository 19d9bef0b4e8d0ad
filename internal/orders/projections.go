package orders

import "context"

const defaultListLimit = 100

func (s *Service) GetOrder(ctx context.Context, id int64) (Order, error) {
	return s.store.GetOrder(ctx, id)
}

// ListOrders returns the newest orders first, at most 100 unless f.Limit says otherwise.
func (s *Service) ListOrders(ctx context.Context, f OrderFilter) ([]Order, error) {
	if f.Status != "" {
		if _, err := ParseStatus(string(f.Status)); err != nil {
			return nil, err
		}
	}
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	return s.store.ListOrders(ctx, f)
}

// AllOrders is the unbounded admin listing.
func (s *Service) AllOrders(ctx context.Context) ([]Order, error) {
	return s.store.ListOrders(ctx, OrderFilter{})
}

func (s *Service) OrdersByTable(ctx context.Context, tableID int64) ([]Order, error) {
	if _, err := s.store.GetTable(ctx, tableID); err != nil {
		return nil, err
	}
	return s.store.ListOrders(ctx, OrderFilter{TableID: tableID})
}

func (s *Service) ListTables(ctx context.Context) ([]Table, error) {
	return s.store.ListTables(ctx)
}

func (s *Service) GetTable(ctx context.Context, id int64) (Table, error) {
	return s.store.GetTable(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	return s.store.ListProducts(ctx)
}
