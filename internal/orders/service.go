package orders

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Notifier receives committed changes. Publish must not block; delivery is
// best effort.
type Notifier interface {
	Publish(ev Event)
}

// Printer emits a kitchen ticket for a committed order snapshot.
type Printer interface {
	PrintKitchenTicket(ctx context.Context, o Order) error
}

type nopNotifier struct{}

func (nopNotifier) Publish(Event) {}

type nopPrinter struct{}

func (nopPrinter) PrintKitchenTicket(context.Context, Order) error { return nil }

// Service is the transaction coordinator: each composite mutation runs as a
// single Store unit, and notifications and printing happen only after commit.
type Service struct {
	store    Store
	ledger   Ledger
	notifier Notifier
	printer  Printer
	log      *zap.Logger
	now      func() time.Time

	sideEffectTimeout time.Duration
	sideEffects       sync.WaitGroup
}

type Option func(*Service)

func WithNotifier(n Notifier) Option { return func(s *Service) { s.notifier = n } }
func WithPrinter(p Printer) Option   { return func(s *Service) { s.printer = p } }
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.log = l.Named("orders") }
}
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithSideEffectTimeout(d time.Duration) Option {
	return func(s *Service) { s.sideEffectTimeout = d }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:             store,
		notifier:          nopNotifier{},
		printer:           nopPrinter{},
		log:               zap.NewNop(),
		now:               func() time.Time { return time.Now().UTC() },
		sideEffectTimeout: 10 * time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// OpenOrder returns the order bound to the table, or creates one in OPEN,
// binds it and marks the table OCCUPIED. created is false when an existing
// order was returned.
func (s *Service) OpenOrder(ctx context.Context, tableID, createdBy int64) (o Order, created bool, err error) {
	var orderID int64
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		t, err := tx.LockTable(ctx, tableID)
		if err != nil {
			return err
		}
		if t.Bound() {
			orderID = *t.CurrentOrderID
			return nil
		}
		n := newOrder(tableID, createdBy, s.now())
		if err := tx.InsertOrder(ctx, &n); err != nil {
			return err
		}
		if err := tx.UpdateTable(ctx, bind(t, n.ID)); err != nil {
			return err
		}
		orderID, created = n.ID, true
		return nil
	})
	if err != nil {
		return Order{}, false, err
	}

	if created {
		s.log.Info("order opened", zap.Int64("order_id", orderID), zap.Int64("table_id", tableID), zap.Int64("created_by", createdBy))
		s.publish(orderNew(orderID, tableID), tableUpdated(tableID))
	}
	o, err = s.store.GetOrder(ctx, orderID)
	if err != nil {
		return Order{}, created, err
	}
	return o, created, nil
}

// AddItems appends lines to a non-terminal order, decrementing stock and
// recomputing the total in the same unit.
func (s *Service) AddItems(ctx context.Context, orderID int64, lines []ItemLine) (Order, error) {
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if err := o.ensureMutable(); err != nil {
			return err
		}
		priced, err := s.ledger.DecrementMany(ctx, tx, lines)
		if err != nil {
			return err
		}
		if _, err := tx.InsertOrderItems(ctx, itemsFrom(orderID, priced)); err != nil {
			return err
		}
		items, err := tx.OrderItems(ctx, orderID)
		if err != nil {
			return err
		}
		return tx.UpdateOrder(ctx, orderID, o.Status, Total(items))
	})
	if err != nil {
		return Order{}, err
	}

	s.publish(orderUpdated(orderID))
	return s.store.GetOrder(ctx, orderID)
}

// SetStatus moves a non-terminal order to any recognized status. Ordering
// along the pipeline is not enforced. Moving to PAID or CANCELLED releases
// the table binding in the same unit. SENT_TO_KITCHEN dispatches a ticket
// after commit.
func (s *Service) SetStatus(ctx context.Context, orderID int64, status string) (Order, error) {
	next, err := ParseStatus(status)
	if err != nil {
		return Order{}, err
	}

	var (
		prev    Status
		tableID int64
		freed   bool
	)
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if err := o.ensureMutable(); err != nil {
			return err
		}
		prev, tableID = o.Status, o.TableID
		if err := tx.UpdateOrder(ctx, orderID, next, o.TotalCents); err != nil {
			return err
		}
		if releases(next) {
			freed, err = s.releaseTable(ctx, tx, o.TableID, orderID)
			return err
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	if prev != next {
		s.log.Info("order status changed", zap.Int64("order_id", orderID), zap.String("from", string(prev)), zap.String("to", string(next)))
		s.publish(orderUpdated(orderID))
	}
	if freed {
		s.publish(tableUpdated(tableID))
	}

	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if next == StatusSentToKitchen {
		snapshot := o
		s.goSideEffect("print kitchen ticket", func(ctx context.Context) error {
			return s.printer.PrintKitchenTicket(ctx, snapshot)
		})
	}
	return o, nil
}

// Pay marks the order PAID and frees its table if the table still points at
// it. Paying an already PAID order returns it unchanged and publishes nothing.
func (s *Service) Pay(ctx context.Context, orderID int64) (Order, error) {
	var (
		alreadyPaid bool
		tableID     int64
		freed       bool
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		o, err := tx.LockOrder(ctx, orderID)
		if err != nil {
			return err
		}
		tableID = o.TableID
		switch o.Status {
		case StatusPaid:
			alreadyPaid = true
			return nil
		case StatusCancelled:
			return ErrOrderClosed
		}
		if err := tx.UpdateOrder(ctx, orderID, StatusPaid, o.TotalCents); err != nil {
			return err
		}
		freed, err = s.releaseTable(ctx, tx, o.TableID, orderID)
		return err
	})
	if err != nil {
		return Order{}, err
	}

	if !alreadyPaid {
		s.log.Info("order paid", zap.Int64("order_id", orderID), zap.Int64("table_id", tableID))
		s.publish(orderUpdated(orderID))
		if freed {
			s.publish(tableUpdated(tableID))
		}
	}
	return s.store.GetOrder(ctx, orderID)
}

// Close is Pay under its second name.
func (s *Service) Close(ctx context.Context, orderID int64) (Order, error) {
	return s.Pay(ctx, orderID)
}

// SetTableStatus changes the status of an unbound table. OCCUPIED is only
// reachable by opening an order.
func (s *Service) SetTableStatus(ctx context.Context, tableID int64, status string) (Table, error) {
	next, err := ParseTableStatus(status)
	if err != nil {
		return Table{}, err
	}
	changed := false
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		t, err := tx.LockTable(ctx, tableID)
		if err != nil {
			return err
		}
		if t.Status == next {
			return nil
		}
		if t.Bound() {
			return ErrTableBusy
		}
		if next == TableOccupied {
			return &Error{Kind: KindValidation, Code: ErrInvalidTableStatus.Code, Message: "OCCUPIED is set by opening an order"}
		}
		t.Status = next
		changed = true
		return tx.UpdateTable(ctx, t)
	})
	if err != nil {
		return Table{}, err
	}
	if changed {
		s.publish(tableUpdated(tableID))
	}
	return s.store.GetTable(ctx, tableID)
}

func (s *Service) releaseTable(ctx context.Context, tx Tx, tableID, orderID int64) (bool, error) {
	t, err := tx.LockTable(ctx, tableID)
	if err != nil {
		return false, err
	}
	t, ok := release(t, orderID)
	if !ok {
		return false, nil
	}
	return true, tx.UpdateTable(ctx, t)
}

func (s *Service) publish(evs ...Event) {
	for _, ev := range evs {
		s.notifier.Publish(ev)
	}
}

// goSideEffect runs fn detached from the request. Errors and panics are
// logged only.
func (s *Service) goSideEffect(name string, fn func(ctx context.Context) error) {
	s.sideEffects.Add(1)
	go func() {
		defer s.sideEffects.Done()
		defer func() {
			if r := recover(); r != nil {
				s.log.Error(name+" panicked", zap.Any("panic", r))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), s.sideEffectTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.log.Warn(name+" failed", zap.Error(err))
		}
	}()
}

// Wait blocks until dispatched side effects have finished. Used at shutdown.
func (s *Service) Wait() { s.sideEffects.Wait() }
