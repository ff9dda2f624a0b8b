package memory

import (
	"context"
	"sync"

	"github.com/minimart/minimart/internal/domain/account"
)

type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*account.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[string]*account.Account)}
}

func (r *AccountRepository) Save(ctx context.Context, a *account.Account) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*account.Account, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, account.ErrNotFound
	}
	cp := *a
	return &cp, nil
}
