package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/minimart/minimart/internal/domain/catalog"
)

type CatalogRepository struct {
	mu         sync.RWMutex
	products   map[string]*catalog.Product
	categories map[string]*catalog.Category
}

func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{
		products:   make(map[string]*catalog.Product),
		categories: make(map[string]*catalog.Category),
	}
}

func (r *CatalogRepository) SaveProduct(ctx context.Context, p *catalog.Product) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *CatalogRepository) FindProduct(ctx context.Context, id string) (*catalog.Product, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *CatalogRepository) ListProducts(ctx context.Context) ([]*catalog.Product, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*catalog.Product, 0, len(r.products))
	for _, p := range r.products {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CatalogRepository) SaveCategory(ctx context.Context, c *catalog.Category) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *CatalogRepository) FindCategory(ctx context.Context, id string) (*catalog.Category, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[id]
	if !ok {
		return nil, catalog.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}
