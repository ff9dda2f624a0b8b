package stock

import (
	"context"
	"errors"
)

var (
	ErrInvalidQuantity = errors.New("stock: quantity must be greater than zero")
	ErrUnknownStock    = errors.New("stock: no ledger entry for key")
)

// Key addresses one ledger entry: a product held at a warehouse.
type Key struct {
	WarehouseID string
	ProductID   string
}

// Ledger tracks available stock per key. Reserve is the gate the checkout
// path depends on: implementations must make the check-and-decrement atomic
// per key so two concurrent reservations can never take the count below zero.
type Ledger interface {
	// Reserve decrements available stock by qty when at least qty units
	// remain. Insufficient stock is a normal outcome reported as (false, nil);
	// the error return is for invalid input or backend failure.
	Reserve(ctx context.Context, key Key, qty int) (bool, error)

	// Release returns qty previously reserved units to available stock.
	Release(ctx context.Context, key Key, qty int) error

	// Consume settles qty reserved units permanently. Available stock was
	// already decremented at reserve time; Consume only retires the hold.
	Consume(ctx context.Context, key Key, qty int) error

	// SetStock creates or overwrites the available count for key. It is an
	// administrative operation and is not transactional with Reserve.
	SetStock(ctx context.Context, key Key, qty int) error

	GetStock(ctx context.Context, key Key) (int, error)

	// Held reports units reserved but not yet released or consumed.
	Held(ctx context.Context, key Key) (int, error)
}
