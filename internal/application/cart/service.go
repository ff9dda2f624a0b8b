package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	domcart "github.com/minimart/minimart/internal/domain/cart"
	domcatalog "github.com/minimart/minimart/internal/domain/catalog"
)

var ErrInvalidInput = errors.New("cart: invalid input")

// ProductSource resolves products when cart lines are added or priced.
type ProductSource interface {
	FindProduct(ctx context.Context, id string) (*domcatalog.Product, error)
}

// Service mutates per-client carts. Carts are a scratchpad; they never turn
// into orders here.
type Service struct {
	carts    domcart.Repository
	products ProductSource
	now      func() time.Time
}

func NewService(carts domcart.Repository, products ProductSource) *Service {
	return &Service{
		carts:    carts,
		products: products,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type AddItemInput struct {
	ClientID  string
	ProductID string
	Quantity  int
}

// AddItem appends quantity to the client's cart, creating the cart on first
// use. The product must exist in the catalog.
func (s *Service) AddItem(ctx context.Context, input AddItemInput) (*domcart.Cart, error) {
	if input.ClientID == "" || input.ProductID == "" {
		return nil, fmt.Errorf("%w: client id and product id are required", ErrInvalidInput)
	}
	if _, err := s.products.FindProduct(ctx, input.ProductID); err != nil {
		return nil, err
	}

	c, err := s.carts.FindByClient(ctx, input.ClientID)
	if errors.Is(err, domcart.ErrNotFound) {
		c = domcart.New(input.ClientID)
	} else if err != nil {
		return nil, err
	}

	if err := c.Add(input.ProductID, input.Quantity); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("cart: save: %w", err)
	}
	return c, nil
}

type RemoveItemInput struct {
	ClientID  string
	ProductID string
}

func (s *Service) RemoveItem(ctx context.Context, input RemoveItemInput) (*domcart.Cart, error) {
	if input.ClientID == "" || input.ProductID == "" {
		return nil, fmt.Errorf("%w: client id and product id are required", ErrInvalidInput)
	}

	c, err := s.carts.FindByClient(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}
	c.Remove(input.ProductID)
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("cart: save: %w", err)
	}
	return c, nil
}

type ApplyPromoInput struct {
	ClientID   string
	Code       string
	PercentOff decimal.Decimal
	ExpiresAt  time.Time
}

// ApplyPromo attaches a promo code to the cart after the expiry check. Any
// further code validation is out of scope.
func (s *Service) ApplyPromo(ctx context.Context, input ApplyPromoInput) (*domcart.Cart, error) {
	if input.ClientID == "" || input.Code == "" {
		return nil, fmt.Errorf("%w: client id and promo code are required", ErrInvalidInput)
	}

	c, err := s.carts.FindByClient(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}
	promo := domcart.PromoCode{
		Code:       input.Code,
		PercentOff: input.PercentOff,
		ExpiresAt:  input.ExpiresAt,
	}
	if err := c.ApplyPromo(promo, s.now()); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("cart: save: %w", err)
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, clientID string) (*domcart.Cart, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: client id is required", ErrInvalidInput)
	}
	return s.carts.FindByClient(ctx, clientID)
}

// Total prices the cart at current catalog prices and applies the promo
// discount when one is attached and still valid.
func (s *Service) Total(ctx context.Context, clientID string) (decimal.Decimal, error) {
	c, err := s.Get(ctx, clientID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for productID, qty := range c.Items {
		product, err := s.products.FindProduct(ctx, productID)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(qty))))
	}

	if c.Promo != nil && c.Promo.Valid(s.now()) {
		discount := total.Mul(c.Promo.PercentOff).Div(decimal.NewFromInt(100))
		total = total.Sub(discount)
	}
	return total, nil
}
