package cart

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("cart: not found")
	ErrInvalidQuantity = errors.New("cart: quantity must be greater than zero")
	ErrPromoExpired    = errors.New("cart: promo code has expired")
)

// PromoCode is a percentage discount with an expiry. The expiry check is the
// only validation a cart performs when a code is applied.
type PromoCode struct {
	Code       string
	PercentOff decimal.Decimal
	ExpiresAt  time.Time
}

func (p PromoCode) Valid(now time.Time) bool {
	return now.Before(p.ExpiresAt)
}

// Cart holds intended quantities per product for one client.
type Cart struct {
	ClientID  string
	Items     map[string]int
	Promo     *PromoCode
	UpdatedAt time.Time
}

func New(clientID string) *Cart {
	return &Cart{
		ClientID:  clientID,
		Items:     make(map[string]int),
		UpdatedAt: time.Now().UTC(),
	}
}

func (c *Cart) Add(productID string, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	c.Items[productID] += qty
	c.touch()
	return nil
}

func (c *Cart) Remove(productID string) {
	delete(c.Items, productID)
	c.touch()
}

func (c *Cart) ApplyPromo(p PromoCode, now time.Time) error {
	if !p.Valid(now) {
		return ErrPromoExpired
	}
	c.Promo = &p
	c.touch()
	return nil
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}

type Repository interface {
	Save(ctx context.Context, cart *Cart) error
	FindByClient(ctx context.Context, clientID string) (*Cart, error)
}
