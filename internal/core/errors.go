package core

import (
	"errors"
	"fmt"
)

// Failure taxonomy. Every error here is recoverable at the UI boundary and
// guarantees no partial write has happened.
var (
	// ErrOutOfStock: the product has zero stock and cannot enter a cart.
	ErrOutOfStock = errors.New("product out of stock")

	// ErrInsufficientStock: the requested quantity exceeds available stock,
	// either against the cart's snapshot or the authoritative re-read at checkout.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrEmptyCart: checkout attempted with no line items.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrClientRequired: a credit sale needs a registered client.
	ErrClientRequired = errors.New("a registered client is required for credit sales")

	// ErrInvalidAmount: a payment or restock amount was zero or negative.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrAmountExceedsDebt: a payment larger than the client's outstanding debt.
	ErrAmountExceedsDebt = errors.New("payment exceeds outstanding debt")

	// ErrNotFound: the referenced product, client, vendor or sale does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateSale: a checkout with an idempotency key that was already committed.
	ErrDuplicateSale = errors.New("sale already processed")
)

// StorageError wraps an underlying database failure. The operation it came
// from is considered not committed; the batch write mechanism guarantees no
// partial state was left behind.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// storeErr wraps err as a StorageError unless it already carries a domain
// sentinel, which must stay visible to errors.Is at the caller.
func storeErr(op string, err error) error {
	for _, sentinel := range []error{
		ErrOutOfStock, ErrInsufficientStock, ErrEmptyCart, ErrClientRequired,
		ErrInvalidAmount, ErrAmountExceedsDebt, ErrNotFound, ErrDuplicateSale,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return &StorageError{Op: op, Err: err}
}
