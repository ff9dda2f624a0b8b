package gateway

import (
	"context"
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/minimart/minimart/internal/domain/payment"
)

// Simulator is a stand-in payment provider. It accepts a configurable share
// of charges, deterministically for a given seed, and never fails transport.
type Simulator struct {
	mu          sync.Mutex
	random      *rand.Rand
	successRate float64
	log         *zap.Logger
}

func NewSimulator(successRate float64, seed int64, logger *zap.Logger) *Simulator {
	if successRate < 0 {
		successRate = 0
	}
	if successRate > 1 {
		successRate = 1
	}
	return &Simulator{
		random:      rand.New(rand.NewSource(seed)),
		successRate: successRate,
		log:         logger.With(zap.String("component", "payment_gateway")),
	}
}

func (s *Simulator) Process(ctx context.Context, p *payment.Payment) (bool, error) {
	_ = ctx
	s.mu.Lock()
	ok := s.random.Float64() <= s.successRate
	s.mu.Unlock()

	s.log.Info("gateway_charge",
		zap.String("payment_id", p.ID),
		zap.String("payment_type", string(p.Type)),
		zap.String("amount", p.Amount.String()),
		zap.Bool("accepted", ok),
	)
	return ok, nil
}
