package shipping

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	domshipping "github.com/minimart/minimart/internal/domain/shipping"
	"github.com/minimart/minimart/internal/pkg/logging"
)

var ErrInvalidInput = errors.New("shipping: invalid input")

// Service answers shipment lookups and refreshes status from the carrier.
type Service struct {
	shipments domshipping.Repository
	courier   domshipping.CourierAPI
}

func NewService(shipments domshipping.Repository, courier domshipping.CourierAPI) *Service {
	return &Service{shipments: shipments, courier: courier}
}

func (s *Service) Get(ctx context.Context, shipmentID string) (*domshipping.Shipment, error) {
	if shipmentID == "" {
		return nil, fmt.Errorf("%w: shipment id is required", ErrInvalidInput)
	}
	return s.shipments.FindByID(ctx, shipmentID)
}

func (s *Service) GetByOrder(ctx context.Context, orderID string) (*domshipping.Shipment, error) {
	if orderID == "" {
		return nil, fmt.Errorf("%w: order id is required", ErrInvalidInput)
	}
	return s.shipments.FindByOrder(ctx, orderID)
}

// Track asks the carrier for the shipment's current position. The carrier is
// best effort: on any courier failure, or a report the status machine cannot
// reach in one step, the stored shipment is returned unchanged.
func (s *Service) Track(ctx context.Context, shipmentID string) (*domshipping.Shipment, error) {
	shipment, err := s.Get(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment.CourierRef == "" {
		return shipment, nil
	}

	logger := logging.FromContext(ctx).With(
		zap.String("shipment_id", shipment.ID),
		zap.String("courier_ref", shipment.CourierRef),
	)

	reported, err := s.courier.TrackShipment(ctx, shipment.CourierRef)
	if err != nil {
		logger.Warn("courier_track_failed", zap.Error(err))
		return shipment, nil
	}
	if reported == shipment.Status {
		return shipment, nil
	}

	if err := shipment.Advance(reported); err != nil {
		logger.Warn("courier_status_ignored",
			zap.String("stored", string(shipment.Status)),
			zap.String("reported", string(reported)),
		)
		return shipment, nil
	}
	if err := s.shipments.Save(ctx, shipment); err != nil {
		return nil, fmt.Errorf("shipping: save: %w", err)
	}

	logger.Info("shipment_status_updated", zap.String("status", string(shipment.Status)))
	return shipment, nil
}
