package memory

import (
	"context"
	"sync"

	"github.com/minimart/minimart/internal/domain/loyalty"
)

type LoyaltyRepository struct {
	mu       sync.RWMutex
	accounts map[string]*loyalty.Account
}

func NewLoyaltyRepository() *LoyaltyRepository {
	return &LoyaltyRepository{accounts: make(map[string]*loyalty.Account)}
}

func (r *LoyaltyRepository) Save(ctx context.Context, a *loyalty.Account) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.accounts[a.ClientID] = &cp
	return nil
}

func (r *LoyaltyRepository) FindByClient(ctx context.Context, clientID string) (*loyalty.Account, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[clientID]
	if !ok {
		return nil, loyalty.ErrNotFound
	}
	cp := *a
	return &cp, nil
}
