package workflow

import (
	"context"
	"errors"

	"github.com/minimart/minimart/internal/domain/catalog"
)

var (
	ErrStockUnavailable = errors.New("workflow: insufficient stock for order")
	ErrNoReservation    = errors.New("workflow: order has no active reservation")
	ErrAmountMismatch   = errors.New("workflow: payment amount does not match order total")
	ErrInvalidInput     = errors.New("workflow: invalid input")
)

// ProductSource is the read-only slice of the catalog the workflow needs for
// price snapshots.
type ProductSource interface {
	FindProduct(ctx context.Context, id string) (*catalog.Product, error)
}
