package payment

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrPaymentFailed = errors.New("payment: declined by gateway")
	ErrInvalidAmount = errors.New("payment: amount must be greater than zero")
	ErrInvalidType   = errors.New("payment: unknown payment type")
	ErrInvalidStatus = errors.New("payment: invalid status for operation")
)

type Type string

const (
	TypeCard    Type = "card"
	TypeEWallet Type = "e_wallet"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

type Payment struct {
	ID        string
	Type      Type
	Amount    decimal.Decimal
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

func New(id string, typ Type, amount decimal.Decimal) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	switch typ {
	case TypeCard, TypeEWallet:
	default:
		return nil, ErrInvalidType
	}

	now := time.Now().UTC()
	return &Payment{
		ID:        id,
		Type:      typ,
		Amount:    amount,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Refund reverses a completed payment. Any other starting status is rejected.
func (p *Payment) Refund() error {
	if p.Status != StatusCompleted {
		return ErrInvalidStatus
	}
	p.Status = StatusRefunded
	p.touch()
	return nil
}

func (p *Payment) markCompleted() {
	p.Status = StatusCompleted
	p.touch()
}

func (p *Payment) markFailed() {
	p.Status = StatusFailed
	p.touch()
}

func (p *Payment) touch() {
	p.UpdatedAt = time.Now().UTC()
}
