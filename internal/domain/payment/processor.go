package payment

import (
	"context"
	"fmt"
)

// Gateway charges a payment with an external provider. The boolean is the
// provider's accept/decline answer; the error reports transport failure.
type Gateway interface {
	Process(ctx context.Context, p *Payment) (bool, error)
}

// Processor drives a payment through the gateway and records the outcome on
// the entity. It never retries; a caller wanting another attempt submits a
// fresh pending payment.
type Processor struct {
	gateway Gateway
}

func NewProcessor(gateway Gateway) *Processor {
	return &Processor{gateway: gateway}
}

// Process charges a pending payment. A decline marks the payment failed and
// returns ErrPaymentFailed; a transport error also marks it failed so the
// caller's rollback path is the same for both.
func (pr *Processor) Process(ctx context.Context, p *Payment) error {
	if p.Status != StatusPending {
		return ErrInvalidStatus
	}

	ok, err := pr.gateway.Process(ctx, p)
	if err != nil {
		p.markFailed()
		return fmt.Errorf("payment: gateway: %w", err)
	}
	if !ok {
		p.markFailed()
		return ErrPaymentFailed
	}

	p.markCompleted()
	return nil
}

// Refund reverses a completed payment.
func (pr *Processor) Refund(ctx context.Context, p *Payment) error {
	return p.Refund()
}
