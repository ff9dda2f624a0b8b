package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/minimart/minimart/internal/domain/event"
	"github.com/minimart/minimart/internal/domain/loyalty"
	"github.com/minimart/minimart/internal/domain/order"
	"github.com/minimart/minimart/internal/domain/payment"
	"github.com/minimart/minimart/internal/domain/stock"
	"github.com/minimart/minimart/internal/infrastructure/id"
	"github.com/minimart/minimart/internal/pkg/logging"
	"github.com/minimart/minimart/internal/pkg/metrics"
)

const publishTimeout = 300 * time.Millisecond

// Deps bundles the collaborators the workflow orchestrates.
type Deps struct {
	Orders    order.Repository
	Products  ProductSource
	Ledger    stock.Ledger
	Processor *payment.Processor
	Loyalty   loyalty.Repository
	Publisher event.Publisher
	IDs       id.Generator
	Metrics   *metrics.ServerMetrics

	// PointsRate is the loyalty credit per currency unit of a settled
	// payment; the credited amount is truncated to whole points.
	PointsRate decimal.Decimal
}

// Service is the order workflow: the single owner of order status
// transitions and of the reservation bookkeeping between checkout and
// payment. Multi-step sequences are serialized per order id; cross-order
// races are decided solely inside Ledger.Reserve.
type Service struct {
	orders     order.Repository
	products   ProductSource
	ledger     stock.Ledger
	processor  *payment.Processor
	loyalty    loyalty.Repository
	publisher  event.Publisher
	ids        id.Generator
	metrics    *metrics.ServerMetrics
	pointsRate decimal.Decimal
	tracer     trace.Tracer

	mu      sync.Mutex
	orderMu map[string]*sync.Mutex
	holds   map[string][]hold
}

// hold is one reserved order line, kept until payment settles or releases it.
type hold struct {
	key stock.Key
	qty int
}

func NewService(deps Deps) *Service {
	return &Service{
		orders:     deps.Orders,
		products:   deps.Products,
		ledger:     deps.Ledger,
		processor:  deps.Processor,
		loyalty:    deps.Loyalty,
		publisher:  deps.Publisher,
		ids:        deps.IDs,
		metrics:    deps.Metrics,
		pointsRate: deps.PointsRate,
		tracer:     otel.Tracer("order-workflow"),
		orderMu:    make(map[string]*sync.Mutex),
		holds:      make(map[string][]hold),
	}
}

type CreateOrderInput struct {
	ClientID string
}

type OrderResult struct {
	OrderID         string
	Status          order.Status
	AwaitingPayment bool
	Total           decimal.Decimal
}

func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (_ *OrderResult, err error) {
	ctx, span := s.tracer.Start(ctx, "workflow.create_order")
	defer func() { endSpan(span, err) }()

	if input.ClientID == "" {
		return nil, fmt.Errorf("%w: client id is required", ErrInvalidInput)
	}

	o := order.New(s.ids.NewID(), input.ClientID)
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("workflow: save order: %w", err)
	}
	span.SetAttributes(attribute.String("order.id", o.ID))

	s.publish(ctx, order.NewOrderCreatedEvent(o))

	logging.FromContext(ctx).Info("create_order_success",
		zap.String("order_id", o.ID),
		zap.String("client_id", o.ClientID),
	)
	return result(o), nil
}

type AddItemInput struct {
	OrderID   string
	ProductID string
	Quantity  int
}

func (s *Service) AddItem(ctx context.Context, input AddItemInput) (_ *OrderResult, err error) {
	ctx, span := s.tracer.Start(ctx, "workflow.add_item",
		trace.WithAttributes(attribute.String("order.id", input.OrderID)))
	defer func() { endSpan(span, err) }()

	if input.OrderID == "" || input.ProductID == "" {
		return nil, fmt.Errorf("%w: order id and product id are required", ErrInvalidInput)
	}

	unlock := s.lockOrder(input.OrderID)
	defer unlock()

	o, err := s.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if err := o.AddItem(product.ID, input.Quantity, product.Price); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("workflow: update order: %w", err)
	}
	return result(o), nil
}

type RemoveItemInput struct {
	OrderID   string
	ProductID string
}

func (s *Service) RemoveItem(ctx context.Context, input RemoveItemInput) (_ *OrderResult, err error) {
	ctx, span := s.tracer.Start(ctx, "workflow.remove_item",
		trace.WithAttributes(attribute.String("order.id", input.OrderID)))
	defer func() { endSpan(span, err) }()

	if input.OrderID == "" || input.ProductID == "" {
		return nil, fmt.Errorf("%w: order id and product id are required", ErrInvalidInput)
	}

	unlock := s.lockOrder(input.OrderID)
	defer unlock()

	o, err := s.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if err := o.RemoveItem(input.ProductID); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, fmt.Errorf("workflow: update order: %w", err)
	}
	return result(o), nil
}

func (s *Service) Get(ctx context.Context, orderID string) (*order.Order, error) {
	if orderID == "" {
		return nil, fmt.Errorf("%w: order id is required", ErrInvalidInput)
	}
	return s.orders.FindByID(ctx, orderID)
}

// lockOrder serializes multi-step sequences per order id. The returned
// function releases the lock.
func (s *Service) lockOrder(orderID string) func() {
	s.mu.Lock()
	m, ok := s.orderMu[orderID]
	if !ok {
		m = &sync.Mutex{}
		s.orderMu[orderID] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func (s *Service) setHolds(orderID string, hs []hold) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(hs) == 0 {
		delete(s.holds, orderID)
		return
	}
	s.holds[orderID] = hs
}

func (s *Service) takeHolds(orderID string) []hold {
	s.mu.Lock()
	defer s.mu.Unlock()
	hs := s.holds[orderID]
	delete(s.holds, orderID)
	return hs
}

// publish hands an event to the bus, bounded by a short timeout. Failures
// are logged and never abort the calling operation.
func (s *Service) publish(ctx context.Context, e event.Event) {
	if s.publisher == nil || e == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(pubCtx, e); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed",
			zap.String("event", e.EventName()),
			zap.Error(err),
		)
		return
	}
	if s.metrics != nil {
		s.metrics.EventsTotal.WithLabelValues(e.EventName()).Inc()
	}
}

func result(o *order.Order) *OrderResult {
	return &OrderResult{
		OrderID:         o.ID,
		Status:          o.Status,
		AwaitingPayment: o.AwaitingPayment,
		Total:           o.Total,
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
