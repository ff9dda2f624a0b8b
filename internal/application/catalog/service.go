package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	domcatalog "github.com/minimart/minimart/internal/domain/catalog"
	"github.com/minimart/minimart/internal/infrastructure/id"
	"github.com/minimart/minimart/internal/pkg/logging"
)

var ErrInvalidInput = errors.New("catalog: invalid input")

// Service manages the product catalog. It also serves the order workflow as
// its read-only product source.
type Service struct {
	repo domcatalog.Repository
	ids  id.Generator
}

func NewService(repo domcatalog.Repository, ids id.Generator) *Service {
	return &Service{repo: repo, ids: ids}
}

type CreateCategoryInput struct {
	Name string
}

func (s *Service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*domcatalog.Category, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}
	category := &domcatalog.Category{ID: s.ids.NewID(), Name: input.Name}
	if err := s.repo.SaveCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("catalog: save category: %w", err)
	}
	return category, nil
}

type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	CategoryID  string
	Kind        domcatalog.Kind
	DownloadURL string
}

func (s *Service) CreateProduct(ctx context.Context, input CreateProductInput) (*domcatalog.Product, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	if input.CategoryID != "" {
		if _, err := s.repo.FindCategory(ctx, input.CategoryID); err != nil {
			return nil, err
		}
	}

	product, err := domcatalog.New(input.Kind, s.ids.NewID(), input.Name, input.Description, input.Price, input.CategoryID, input.DownloadURL)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SaveProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("catalog: save product: %w", err)
	}

	logging.FromContext(ctx).Info("create_product_success",
		zap.String("product_id", product.ID),
		zap.String("kind", string(product.Kind)),
		zap.String("price", product.Price.String()),
	)
	return product, nil
}

type ChangePriceInput struct {
	ProductID string
	Price     decimal.Decimal
}

// ChangePrice is the only way a product price moves after creation. Orders
// keep the unit price snapshotted when the item was added.
func (s *Service) ChangePrice(ctx context.Context, input ChangePriceInput) (*domcatalog.Product, error) {
	if input.ProductID == "" {
		return nil, fmt.Errorf("%w: product id is required", ErrInvalidInput)
	}

	product, err := s.repo.FindProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	old := product.Price
	if err := product.ChangePrice(input.Price); err != nil {
		return nil, err
	}
	if err := s.repo.SaveProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("catalog: save product: %w", err)
	}

	logging.FromContext(ctx).Info("change_price_success",
		zap.String("product_id", product.ID),
		zap.String("old_price", old.String()),
		zap.String("new_price", product.Price.String()),
	)
	return product, nil
}

// FindProduct satisfies the workflow's product source port.
func (s *Service) FindProduct(ctx context.Context, productID string) (*domcatalog.Product, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: product id is required", ErrInvalidInput)
	}
	return s.repo.FindProduct(ctx, productID)
}

func (s *Service) ListProducts(ctx context.Context) ([]*domcatalog.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) FindCategory(ctx context.Context, categoryID string) (*domcatalog.Category, error) {
	if categoryID == "" {
		return nil, fmt.Errorf("%w: category id is required", ErrInvalidInput)
	}
	return s.repo.FindCategory(ctx, categoryID)
}
