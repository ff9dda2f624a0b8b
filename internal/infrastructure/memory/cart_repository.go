package memory

import (
	"context"
	"sync"

	"github.com/minimart/minimart/internal/domain/cart"
)

type CartRepository struct {
	mu    sync.RWMutex
	carts map[string]*cart.Cart
}

func NewCartRepository() *CartRepository {
	return &CartRepository{carts: make(map[string]*cart.Cart)}
}

func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[c.ClientID] = cloneCart(c)
	return nil
}

func (r *CartRepository) FindByClient(ctx context.Context, clientID string) (*cart.Cart, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.carts[clientID]
	if !ok {
		return nil, cart.ErrNotFound
	}
	return cloneCart(c), nil
}

func cloneCart(c *cart.Cart) *cart.Cart {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Items = make(map[string]int, len(c.Items))
	for id, qty := range c.Items {
		clone.Items[id] = qty
	}
	if c.Promo != nil {
		promo := *c.Promo
		clone.Promo = &promo
	}
	return &clone
}
