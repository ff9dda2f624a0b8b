package courier

import (
	"context"

	"go.uber.org/zap"

	"github.com/minimart/minimart/internal/domain/shipping"
	"github.com/minimart/minimart/internal/infrastructure/id"
)

// LoggingCourier is a development carrier: it assigns references locally and
// records every call instead of talking to a real courier network.
type LoggingCourier struct {
	ids id.Generator
	log *zap.Logger
}

func NewLoggingCourier(ids id.Generator, logger *zap.Logger) *LoggingCourier {
	return &LoggingCourier{
		ids: ids,
		log: logger.With(zap.String("component", "courier")),
	}
}

func (c *LoggingCourier) CreateShipment(ctx context.Context, s *shipping.Shipment) (string, error) {
	_ = ctx
	ref := c.ids.NewID()
	c.log.Info("courier_shipment_created",
		zap.String("shipment_id", s.ID),
		zap.String("order_id", s.OrderID),
		zap.String("courier_ref", ref),
		zap.String("destination", s.Destination.Label()),
	)
	return ref, nil
}

func (c *LoggingCourier) TrackShipment(ctx context.Context, courierRef string) (shipping.Status, error) {
	_ = ctx
	c.log.Info("courier_track", zap.String("courier_ref", courierRef))
	return shipping.StatusInTransit, nil
}
