package loyalty

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("loyalty: account not found")
	ErrInvalidPoints      = errors.New("loyalty: points must be greater than zero")
	ErrInsufficientPoints = errors.New("loyalty: insufficient points")
)

// Account accumulates points for one client. The balance never goes negative.
type Account struct {
	ClientID  string
	Points    int64
	UpdatedAt time.Time
}

func NewAccount(clientID string) *Account {
	return &Account{ClientID: clientID, UpdatedAt: time.Now().UTC()}
}

func (a *Account) Credit(points int64) error {
	if points <= 0 {
		return ErrInvalidPoints
	}
	a.Points += points
	a.touch()
	return nil
}

func (a *Account) Redeem(points int64) error {
	if points <= 0 {
		return ErrInvalidPoints
	}
	if points > a.Points {
		return ErrInsufficientPoints
	}
	a.Points -= points
	a.touch()
	return nil
}

func (a *Account) touch() {
	a.UpdatedAt = time.Now().UTC()
}

type Repository interface {
	Save(ctx context.Context, account *Account) error
	FindByClient(ctx context.Context, clientID string) (*Account, error)
}
