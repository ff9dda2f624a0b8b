package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	domaccount "github.com/minimart/minimart/internal/domain/account"
	"github.com/minimart/minimart/internal/domain/event"
	domorder "github.com/minimart/minimart/internal/domain/order"
	domshipping "github.com/minimart/minimart/internal/domain/shipping"
	"github.com/minimart/minimart/internal/infrastructure/id"
)

// OrderAttacher records the shipment id on the order. The workflow service
// implements it so the write goes through the same per-order serialization
// as every other order mutation.
type OrderAttacher interface {
	AttachShipment(ctx context.Context, orderID, shipmentID string) error
}

// Worker opens a shipment for every settled order. The courier handover is
// best effort: a courier failure leaves the shipment in ready and never
// reaches the order's status machine.
type Worker struct {
	orders    OrderAttacher
	accounts  domaccount.Repository
	shipments domshipping.Repository
	courier   domshipping.CourierAPI
	ids       id.Generator
	log       *zap.Logger
}

func New(orders OrderAttacher, accounts domaccount.Repository, shipments domshipping.Repository, courier domshipping.CourierAPI, ids id.Generator, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.L()
	}
	return &Worker{
		orders:    orders,
		accounts:  accounts,
		shipments: shipments,
		courier:   courier,
		ids:       ids,
		log:       logger.With(zap.String("component", "shipping_worker")),
	}
}

func (w *Worker) Start(sub event.Subscriber) {
	if sub == nil || w.orders == nil || w.shipments == nil {
		return
	}
	sub.Subscribe(domorder.OrderSettledEvent{}.EventName(), w.handleOrderSettled)
}

func (w *Worker) handleOrderSettled(ctx context.Context, e event.Event) error {
	evt, ok := e.(domorder.OrderSettledEvent)
	if !ok {
		return nil
	}

	logger := w.log.With(
		zap.String("order_id", evt.OrderID),
		zap.String("client_id", evt.ClientID),
	)

	acct, err := w.accounts.FindByID(ctx, evt.ClientID)
	if err != nil {
		logger.Error("account_load_failed", zap.Error(err))
		return fmt.Errorf("shipping worker: load account: %w", err)
	}

	shipment := domshipping.New(w.ids.NewID(), evt.OrderID, acct.Address)

	ref, err := w.courier.CreateShipment(ctx, shipment)
	if err != nil {
		logger.Warn("courier_create_failed", zap.Error(err))
	} else if err := shipment.MarkShipped(ref); err != nil {
		logger.Warn("shipment_dispatch_failed", zap.Error(err))
	}

	if err := w.shipments.Save(ctx, shipment); err != nil {
		logger.Error("shipment_save_failed", zap.Error(err))
		return fmt.Errorf("shipping worker: save shipment: %w", err)
	}
	if err := w.orders.AttachShipment(ctx, evt.OrderID, shipment.ID); err != nil {
		logger.Error("shipment_attach_failed", zap.Error(err))
		return fmt.Errorf("shipping worker: attach shipment: %w", err)
	}

	logger.Info("shipment_opened",
		zap.String("shipment_id", shipment.ID),
		zap.String("status", string(shipment.Status)),
	)
	return nil
}
