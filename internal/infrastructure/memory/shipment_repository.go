package memory

import (
	"context"
	"sync"

	"github.com/minimart/minimart/internal/domain/shipping"
)

type ShipmentRepository struct {
	mu        sync.RWMutex
	shipments map[string]*shipping.Shipment
	byOrder   map[string]string
}

func NewShipmentRepository() *ShipmentRepository {
	return &ShipmentRepository{
		shipments: make(map[string]*shipping.Shipment),
		byOrder:   make(map[string]string),
	}
}

func (r *ShipmentRepository) Save(ctx context.Context, s *shipping.Shipment) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.shipments[s.ID] = &cp
	r.byOrder[s.OrderID] = s.ID
	return nil
}

func (r *ShipmentRepository) FindByID(ctx context.Context, id string) (*shipping.Shipment, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.shipments[id]
	if !ok {
		return nil, shipping.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *ShipmentRepository) FindByOrder(ctx context.Context, orderID string) (*shipping.Shipment, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byOrder[orderID]
	if !ok {
		return nil, shipping.ErrNotFound
	}
	s, ok := r.shipments[id]
	if !ok {
		return nil, shipping.ErrNotFound
	}
	cp := *s
	return &cp, nil
}
