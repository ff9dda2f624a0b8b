package shipping

import (
	"context"
	"errors"
	"time"

	"github.com/minimart/minimart/internal/domain/address"
)

var (
	ErrNotFound          = errors.New("shipping: shipment not found")
	ErrInvalidTransition = errors.New("shipping: invalid status transition")
)

type Status string

const (
	StatusReady     Status = "ready"
	StatusShipped   Status = "shipped"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
)

var transitions = map[Status][]Status{
	StatusReady:     {StatusShipped},
	StatusShipped:   {StatusInTransit},
	StatusInTransit: {StatusDelivered},
	StatusDelivered: {},
}

// Shipment tracks one physical delivery for an order. CourierRef is the
// carrier-assigned identifier, set once the shipment is handed over.
type Shipment struct {
	ID          string
	OrderID     string
	Destination address.Address
	Status      Status
	CourierRef  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func New(id, orderID string, dest address.Address) *Shipment {
	now := time.Now().UTC()
	return &Shipment{
		ID:          id,
		OrderID:     orderID,
		Destination: dest,
		Status:      StatusReady,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// MarkShipped hands the shipment to the carrier.
func (s *Shipment) MarkShipped(courierRef string) error {
	if err := s.Advance(StatusShipped); err != nil {
		return err
	}
	s.CourierRef = courierRef
	return nil
}

// Advance moves the shipment forward exactly one step.
func (s *Shipment) Advance(next Status) error {
	for _, allowed := range transitions[s.Status] {
		if allowed == next {
			s.Status = next
			s.touch()
			return nil
		}
	}
	return ErrInvalidTransition
}

func (s *Shipment) touch() {
	s.UpdatedAt = time.Now().UTC()
}

// CourierAPI is the external carrier integration. Callers treat both
// operations as best effort and never fail order state on a courier error.
type CourierAPI interface {
	// CreateShipment registers the shipment with the carrier and returns
	// the carrier's reference.
	CreateShipment(ctx context.Context, s *Shipment) (string, error)
	TrackShipment(ctx context.Context, courierRef string) (Status, error)
}

type Repository interface {
	Save(ctx context.Context, s *Shipment) error
	FindByID(ctx context.Context, id string) (*Shipment, error)
	FindByOrder(ctx context.Context, orderID string) (*Shipment, error)
}
