package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/minimart/minimart/internal/domain/loyalty"
	"github.com/minimart/minimart/internal/domain/order"
	"github.com/minimart/minimart/internal/domain/payment"
	"github.com/minimart/minimart/internal/domain/stock"
	"github.com/minimart/minimart/internal/pkg/logging"
)

type CheckoutInput struct {
	OrderID     string
	WarehouseID string
}

// Checkout reserves stock for every order line, all or nothing. The first
// line that cannot be reserved rolls back every earlier reservation in
// reverse order and fails the whole checkout. On success the order is frozen
// awaiting payment.
func (s *Service) Checkout(ctx context.Context, input CheckoutInput) (_ *OrderResult, err error) {
	ctx, span := s.tracer.Start(ctx, "workflow.checkout",
		trace.WithAttributes(
			attribute.String("order.id", input.OrderID),
			attribute.String("warehouse.id", input.WarehouseID),
		))
	defer func() { endSpan(span, err) }()
	defer func() { s.countCheckout(err) }()

	if input.OrderID == "" || input.WarehouseID == "" {
		return nil, fmt.Errorf("%w: order id and warehouse id are required", ErrInvalidInput)
	}

	logger := logging.FromContext(ctx).With(
		zap.String("order_id", input.OrderID),
		zap.String("warehouse_id", input.WarehouseID),
	)

	unlock := s.lockOrder(input.OrderID)
	defer unlock()

	o, err := s.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if o.Status != order.StatusCreated || o.AwaitingPayment {
		return nil, order.ErrInvalidTransition
	}
	if o.Empty() {
		return nil, order.ErrEmptyOrder
	}

	reserved := make([]hold, 0, len(o.Items))
	for _, item := range o.Items {
		key := stock.Key{WarehouseID: input.WarehouseID, ProductID: item.ProductID}

		ok, rerr := s.ledger.Reserve(ctx, key, item.Quantity)
		if rerr != nil {
			s.releaseHolds(ctx, logger, reserved)
			return nil, fmt.Errorf("workflow: reserve %s: %w", item.ProductID, rerr)
		}
		if !ok {
			s.releaseHolds(ctx, logger, reserved)
			logger.Info("checkout_rollback", zap.String("product_id", item.ProductID))
			return nil, fmt.Errorf("%w: product %s", ErrStockUnavailable, item.ProductID)
		}
		reserved = append(reserved, hold{key: key, qty: item.Quantity})
	}

	if err := o.BeginPayment(); err != nil {
		s.releaseHolds(ctx, logger, reserved)
		return nil, err
	}
	if err := s.orders.Update(ctx, o); err != nil {
		s.releaseHolds(ctx, logger, reserved)
		return nil, fmt.Errorf("workflow: update order: %w", err)
	}
	s.setHolds(o.ID, reserved)

	logger.Info("checkout_success", zap.Int("lines", len(reserved)))
	return result(o), nil
}

type PayInput struct {
	OrderID string
	Type    payment.Type
	Amount  decimal.Decimal
}

type PayResult struct {
	OrderID        string
	OrderStatus    order.Status
	PaymentID      string
	PaymentStatus  payment.Status
	PointsCredited int64
}

// Pay settles a checked-out order. The gateway decides; on acceptance the
// reservations are consumed, the order moves to processing and loyalty
// points are credited. On decline or gateway failure every reservation is
// released and the order is cancelled.
func (s *Service) Pay(ctx context.Context, input PayInput) (_ *PayResult, err error) {
	ctx, span := s.tracer.Start(ctx, "workflow.pay",
		trace.WithAttributes(attribute.String("order.id", input.OrderID)))
	defer func() { endSpan(span, err) }()

	if input.OrderID == "" {
		return nil, fmt.Errorf("%w: order id is required", ErrInvalidInput)
	}

	logger := logging.FromContext(ctx).With(zap.String("order_id", input.OrderID))

	unlock := s.lockOrder(input.OrderID)
	defer unlock()

	o, err := s.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if !o.AwaitingPayment {
		return nil, ErrNoReservation
	}

	p, err := payment.New(s.ids.NewID(), input.Type, input.Amount)
	if err != nil {
		return nil, err
	}
	if !p.Amount.Equal(o.Total) {
		return nil, fmt.Errorf("%w: payment %s, order total %s", ErrAmountMismatch, p.Amount, o.Total)
	}

	// the gateway call holds the per-order lock but never a ledger lock
	payErr := s.processor.Process(ctx, p)
	s.countPayment(p.Type, payErr)

	if payErr != nil {
		s.rollbackPayment(ctx, logger, o, payErr)
		return nil, payErr
	}

	holds := s.takeHolds(o.ID)
	for _, h := range holds {
		if cerr := s.ledger.Consume(ctx, h.key, h.qty); cerr != nil {
			logger.Warn("consume_failed",
				zap.String("product_id", h.key.ProductID),
				zap.Int("quantity", h.qty),
				zap.Error(cerr),
			)
		}
	}

	if err := o.MarkProcessing(); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("workflow: update order: %w", err)
	}

	points := s.creditPoints(ctx, logger, o.ClientID, p)

	s.publish(ctx, order.NewOrderSettledEvent(o, warehouseOf(holds)))

	logger.Info("payment_success",
		zap.String("payment_id", p.ID),
		zap.String("amount", p.Amount.String()),
		zap.Int64("points_credited", points),
	)
	return &PayResult{
		OrderID:        o.ID,
		OrderStatus:    o.Status,
		PaymentID:      p.ID,
		PaymentStatus:  p.Status,
		PointsCredited: points,
	}, nil
}

// rollbackPayment releases every reservation and cancels the order after a
// declined or failed charge.
func (s *Service) rollbackPayment(ctx context.Context, logger *zap.Logger, o *order.Order, payErr error) {
	holds := s.takeHolds(o.ID)
	s.releaseHolds(ctx, logger, holds)

	if err := o.Cancel(); err != nil {
		logger.Error("cancel_after_payment_failure_failed", zap.Error(err))
		return
	}
	if err := s.orders.Update(ctx, o); err != nil {
		logger.Error("order_update_failed", zap.Error(err))
		return
	}

	reason := "payment_failed"
	if !errors.Is(payErr, payment.ErrPaymentFailed) {
		reason = "payment_error"
	}
	s.publish(ctx, order.NewOrderCancelledEvent(o, reason))

	logger.Info("payment_rollback", zap.String("reason", reason), zap.Error(payErr))
}

// Cancel releases any outstanding reservations and ends the order. Terminal
// orders are rejected.
func (s *Service) Cancel(ctx context.Context, orderID string) (_ *OrderResult, err error) {
	ctx, span := s.tracer.Start(ctx, "workflow.cancel",
		trace.WithAttributes(attribute.String("order.id", orderID)))
	defer func() { endSpan(span, err) }()

	if orderID == "" {
		return nil, fmt.Errorf("%w: order id is required", ErrInvalidInput)
	}

	logger := logging.FromContext(ctx).With(zap.String("order_id", orderID))

	unlock := s.lockOrder(orderID)
	defer unlock()

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.Cancel(); err != nil {
		return nil, err
	}

	holds := s.takeHolds(orderID)
	s.releaseHolds(ctx, logger, holds)

	if err := s.orders.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("workflow: update order: %w", err)
	}
	s.publish(ctx, order.NewOrderCancelledEvent(o, "client_cancelled"))

	logger.Info("cancel_order_success", zap.Int("released_lines", len(holds)))
	return result(o), nil
}

type AdvanceShipmentInput struct {
	OrderID string
	Next    order.Status
}

// AdvanceShipment moves a settled order one delivery step forward.
func (s *Service) AdvanceShipment(ctx context.Context, input AdvanceShipmentInput) (_ *OrderResult, err error) {
	ctx, span := s.tracer.Start(ctx, "workflow.advance_shipment",
		trace.WithAttributes(
			attribute.String("order.id", input.OrderID),
			attribute.String("order.next_status", string(input.Next)),
		))
	defer func() { endSpan(span, err) }()

	if input.OrderID == "" {
		return nil, fmt.Errorf("%w: order id is required", ErrInvalidInput)
	}
	if !input.Next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, input.Next)
	}

	unlock := s.lockOrder(input.OrderID)
	defer unlock()

	o, err := s.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if err := o.AdvanceShipment(input.Next); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("workflow: update order: %w", err)
	}

	logging.FromContext(ctx).Info("advance_shipment_success",
		zap.String("order_id", o.ID),
		zap.String("status", string(o.Status)),
	)
	return result(o), nil
}

// AttachShipment records the shipment id the shipping worker created.
func (s *Service) AttachShipment(ctx context.Context, orderID, shipmentID string) error {
	if orderID == "" || shipmentID == "" {
		return fmt.Errorf("%w: order id and shipment id are required", ErrInvalidInput)
	}

	unlock := s.lockOrder(orderID)
	defer unlock()

	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	o.AttachShipment(shipmentID)
	if err := s.orders.Update(ctx, o); err != nil {
		return fmt.Errorf("workflow: update order: %w", err)
	}
	return nil
}

func (s *Service) releaseHolds(ctx context.Context, logger *zap.Logger, holds []hold) {
	for i := len(holds) - 1; i >= 0; i-- {
		h := holds[i]
		if err := s.ledger.Release(ctx, h.key, h.qty); err != nil {
			logger.Error("release_failed",
				zap.String("product_id", h.key.ProductID),
				zap.Int("quantity", h.qty),
				zap.Error(err),
			)
		}
	}
}

// creditPoints awards rate×amount loyalty points, truncated to whole points.
// A loyalty failure never unwinds a settled payment; it is logged and the
// settlement stands.
func (s *Service) creditPoints(ctx context.Context, logger *zap.Logger, clientID string, p *payment.Payment) int64 {
	points := s.pointsRate.Mul(p.Amount).IntPart()
	if points <= 0 || s.loyalty == nil {
		return 0
	}

	account, err := s.loyalty.FindByClient(ctx, clientID)
	if err != nil {
		account = loyalty.NewAccount(clientID)
	}
	if err := account.Credit(points); err != nil {
		logger.Error("loyalty_credit_failed", zap.Int64("points", points), zap.Error(err))
		return 0
	}
	if err := s.loyalty.Save(ctx, account); err != nil {
		logger.Error("loyalty_save_failed", zap.Int64("points", points), zap.Error(err))
		return 0
	}
	return points
}

func (s *Service) countCheckout(err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	switch {
	case errors.Is(err, ErrStockUnavailable):
		outcome = "stock_unavailable"
	case err != nil:
		outcome = "error"
	}
	s.metrics.CheckoutTotal.WithLabelValues(outcome).Inc()
}

func (s *Service) countPayment(method payment.Type, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	switch {
	case errors.Is(err, payment.ErrPaymentFailed):
		outcome = "declined"
	case err != nil:
		outcome = "error"
	}
	s.metrics.PaymentsTotal.WithLabelValues(string(method), outcome).Inc()
}

func warehouseOf(holds []hold) string {
	if len(holds) == 0 {
		return ""
	}
	return holds[0].key.WarehouseID
}
