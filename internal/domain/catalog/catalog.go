package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound         = errors.New("catalog: product not found")
	ErrCategoryNotFound = errors.New("catalog: category not found")
	ErrInvalidPrice     = errors.New("catalog: price must be zero or greater")
	ErrInvalidKind      = errors.New("catalog: unknown product kind")
	ErrMissingDownload  = errors.New("catalog: digital product requires a download url")
)

type Kind string

const (
	KindPhysical Kind = "physical"
	KindDigital  Kind = "digital"
)

type Category struct {
	ID   string
	Name string
}

// Product is a sellable catalog entry. Identity is immutable after creation;
// the price changes only through ChangePrice.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	CategoryID  string
	Kind        Kind
	// DownloadURL is set for digital products only.
	DownloadURL string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New builds a product of the given kind. Digital products must carry a
// download URL; physical products never do.
func New(kind Kind, id, name, description string, price decimal.Decimal, categoryID, downloadURL string) (*Product, error) {
	if price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	switch kind {
	case KindPhysical:
		downloadURL = ""
	case KindDigital:
		if downloadURL == "" {
			return nil, ErrMissingDownload
		}
	default:
		return nil, ErrInvalidKind
	}

	now := time.Now().UTC()
	return &Product{
		ID:          id,
		Name:        name,
		Description: description,
		Price:       price,
		CategoryID:  categoryID,
		Kind:        kind,
		DownloadURL: downloadURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (p *Product) ChangePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrInvalidPrice
	}
	p.Price = price
	p.touch()
	return nil
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now().UTC()
}

type Repository interface {
	SaveProduct(ctx context.Context, product *Product) error
	FindProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context) ([]*Product, error)
	SaveCategory(ctx context.Context, category *Category) error
	FindCategory(ctx context.Context, id string) (*Category, error)
}
