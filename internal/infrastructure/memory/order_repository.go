package memory

import (
	"context"
	"sync"

	"github.com/minimart/minimart/internal/domain/order"
)

// OrderRepository stores orders in memory. Orders are cloned on the way in
// and out so callers can never mutate shared state behind the lock.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*order.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]*order.Order)}
}

func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[o.ID]; !ok {
		return order.ErrNotFound
	}
	r.orders[o.ID] = cloneOrder(o)
	return nil
}

func cloneOrder(o *order.Order) *order.Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]order.Item(nil), o.Items...)
	return &clone
}
