package orders

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindInsufficientStock
	KindValidation
	KindRetryable
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindValidation:
		return "validation"
	case KindRetryable:
		return "retryable"
	}
	return "internal"
}

// Error is the structured error every core operation returns for
// conditions it detects itself. Two Errors match under errors.Is when
// their codes are equal, so sentinels below work with wrapped detail.
type Error struct {
	Kind      Kind
	Code      string
	Message   string
	ProductID int64
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrTableNotFound      = &Error{Kind: KindNotFound, Code: "TABLE_NOT_FOUND", Message: "table not found"}
	ErrOrderNotFound      = &Error{Kind: KindNotFound, Code: "ORDER_NOT_FOUND", Message: "order not found"}
	ErrProductNotFound    = &Error{Kind: KindNotFound, Code: "PRODUCT_NOT_FOUND", Message: "product not found"}
	ErrOrderClosed        = &Error{Kind: KindConflict, Code: "ORDER_CLOSED", Message: "order is closed"}
	ErrTableBusy          = &Error{Kind: KindConflict, Code: "TABLE_BUSY", Message: "table is bound to an open order"}
	ErrInsufficientStock  = &Error{Kind: KindInsufficientStock, Code: "INSUFFICIENT_STOCK", Message: "insufficient stock"}
	ErrInvalidStatus      = &Error{Kind: KindValidation, Code: "INVALID_STATUS", Message: "status not allowed"}
	ErrInvalidTableStatus = &Error{Kind: KindValidation, Code: "INVALID_TABLE_STATUS", Message: "table status not allowed"}
	ErrInvalidItems       = &Error{Kind: KindValidation, Code: "VALIDATION_ERROR", Message: "invalid items"}
	ErrRetryable          = &Error{Kind: KindRetryable, Code: "RETRYABLE", Message: "transaction aborted, retry"}
)

func productNotFound(id int64) error {
	return &Error{
		Kind:      KindNotFound,
		Code:      ErrProductNotFound.Code,
		Message:   fmt.Sprintf("product not found: %d", id),
		ProductID: id,
	}
}

func insufficientStock(p Product) error {
	return &Error{
		Kind:      KindInsufficientStock,
		Code:      ErrInsufficientStock.Code,
		Message:   "insufficient stock for " + p.Name,
		ProductID: p.ID,
	}
}

func invalidItems(msg string) error {
	return &Error{Kind: KindValidation, Code: ErrInvalidItems.Code, Message: msg}
}

// Retryable wraps a persistence abort (deadlock, lock timeout, serialization
// failure) so callers can tell it apart from a fatal error.
func Retryable(err error) error {
	return &Error{Kind: KindRetryable, Code: ErrRetryable.Code, Message: ErrRetryable.Message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
