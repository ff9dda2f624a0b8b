package account

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/minimart/minimart/internal/domain/address"
)

var (
	ErrNotFound     = errors.New("account: not found")
	ErrInvalidRole  = errors.New("account: unknown role")
	ErrNotAdmin     = errors.New("account: action requires the admin role")
	ErrInvalidEmail = errors.New("account: a valid email address is required")
)

// Role is the closed set of account variants. Behavior differences hang off
// the role value rather than separate account types.
type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

type Account struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Address   address.Address
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

func New(id, name, email, phone string, addr address.Address, role Role) (*Account, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	switch role {
	case RoleClient, RoleAdmin:
	default:
		return nil, ErrInvalidRole
	}

	now := time.Now().UTC()
	return &Account{
		ID:        id,
		Name:      name,
		Email:     email,
		Phone:     phone,
		Address:   addr,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (a *Account) IsAdmin() bool { return a.Role == RoleAdmin }

func (a *Account) UpdateContact(phone string, addr address.Address) {
	a.Phone = phone
	a.Address = addr
	a.touch()
}

func (a *Account) touch() {
	a.UpdatedAt = time.Now().UTC()
}

type Repository interface {
	Save(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, id string) (*Account, error)
}

// ActionLogger records administrative actions for audit. Implementations are
// best effort; callers never fail an operation on a logging error.
type ActionLogger interface {
	Log(ctx context.Context, adminID, action string)
}
