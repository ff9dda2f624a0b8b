package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"

	appaccount "github.com/minimart/minimart/internal/application/account"
	appcart "github.com/minimart/minimart/internal/application/cart"
	appcatalog "github.com/minimart/minimart/internal/application/catalog"
	appshipping "github.com/minimart/minimart/internal/application/shipping"
	"github.com/minimart/minimart/internal/application/workflow"
	"github.com/minimart/minimart/internal/config"
	domorder "github.com/minimart/minimart/internal/domain/order"
	dompayment "github.com/minimart/minimart/internal/domain/payment"
	"github.com/minimart/minimart/internal/domain/stock"
	"github.com/minimart/minimart/internal/infrastructure/adminlog"
	"github.com/minimart/minimart/internal/infrastructure/courier"
	"github.com/minimart/minimart/internal/infrastructure/dynamo"
	"github.com/minimart/minimart/internal/infrastructure/eventbus"
	"github.com/minimart/minimart/internal/infrastructure/gateway"
	"github.com/minimart/minimart/internal/infrastructure/id"
	"github.com/minimart/minimart/internal/infrastructure/kafka"
	"github.com/minimart/minimart/internal/infrastructure/memory"
	shippingworker "github.com/minimart/minimart/internal/infrastructure/shipping/worker"
	"github.com/minimart/minimart/internal/pkg/logging"
	"github.com/minimart/minimart/internal/pkg/metrics"
	httptransport "github.com/minimart/minimart/internal/transport/http"
)

func main() {
	cfg := config.Load()

	logger := logging.MustNewLogger(config.ServiceName, cfg.AppEnv, cfg.LogLevel)
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTLPEndpoint != "" {
		tp, err := newTracerProvider(ctx, cfg.OTLPEndpoint)
		if err != nil {
			logger.Fatal("tracer_provider_init_failed", zap.Error(err))
		}
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(flushCtx); err != nil {
				logger.Error("tracer_provider_shutdown_error", zap.Error(err))
			}
		}()
		logger.Info("tracing_enabled", zap.String("endpoint", cfg.OTLPEndpoint))
	}

	serverMetrics := metrics.NewServerMetrics("http")
	ids := id.NewUUIDGenerator()

	accountRepo := memory.NewAccountRepository()
	catalogRepo := memory.NewCatalogRepository()
	cartRepo := memory.NewCartRepository()
	orderRepo := memory.NewOrderRepository()
	loyaltyRepo := memory.NewLoyaltyRepository()
	shipmentRepo := memory.NewShipmentRepository()

	var ledger stock.Ledger
	switch cfg.StockBackend {
	case "dynamodb":
		client, err := dynamo.NewClient(ctx)
		if err != nil {
			logger.Fatal("dynamo_client_init_failed", zap.Error(err))
		}
		ledger = dynamo.NewStockLedger(client, cfg.DynamoTable, logger)
		logger.Info("stock_ledger_ready", zap.String("backend", "dynamodb"), zap.String("table", cfg.DynamoTable))
	default:
		ledger = memory.NewStockLedger(logger)
		logger.Info("stock_ledger_ready", zap.String("backend", "memory"))
	}

	bus := eventbus.NewBus(logger)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	pointsRate, err := decimal.NewFromString(cfg.LoyaltyPointsRate)
	if err != nil {
		logger.Warn("invalid_points_rate",
			zap.String("value", cfg.LoyaltyPointsRate),
			zap.Error(err),
		)
		pointsRate = decimal.NewFromInt(1)
	}

	processor := dompayment.NewProcessor(gateway.NewSimulator(cfg.GatewaySuccessRate, cfg.GatewaySeed, logger))

	catalogSvc := appcatalog.NewService(catalogRepo, ids)
	wf := workflow.NewService(workflow.Deps{
		Orders:     orderRepo,
		Products:   catalogSvc,
		Ledger:     ledger,
		Processor:  processor,
		Loyalty:    loyaltyRepo,
		Publisher:  bus,
		IDs:        ids,
		Metrics:    serverMetrics,
		PointsRate: pointsRate,
	})
	accountSvc := appaccount.NewService(appaccount.Deps{
		Accounts: accountRepo,
		Loyalty:  loyaltyRepo,
		Audit:    adminlog.New(logger),
		IDs:      ids,
	})
	cartSvc := appcart.NewService(cartRepo, catalogSvc)
	courierAPI := courier.NewLoggingCourier(ids, logger)
	shippingSvc := appshipping.NewService(shipmentRepo, courierAPI)

	shippingworker.New(wf, accountRepo, shipmentRepo, courierAPI, ids, logger).Start(bus)

	kafkaClient := kafka.NewClient(cfg.KafkaBrokers)
	if kafkaClient.Enabled() {
		writer := kafkaClient.NewWriter(cfg.KafkaTopic)
		defer func() { _ = writer.Close() }()
		kafka.NewMirror(writer, logger).Register(bus,
			domorder.OrderCreatedEvent{}.EventName(),
			domorder.OrderSettledEvent{}.EventName(),
			domorder.OrderCancelledEvent{}.EventName(),
		)
		logger.Info("kafka_mirror_enabled",
			zap.Strings("brokers", kafkaClient.Brokers),
			zap.String("topic", cfg.KafkaTopic),
		)
	}

	handler := httptransport.NewHandler(httptransport.Deps{
		Workflow:  wf,
		Accounts:  accountSvc,
		Catalog:   catalogSvc,
		Carts:     cartSvc,
		Shipments: shippingSvc,
		Ledger:    ledger,
		Metrics:   serverMetrics,
		Logger:    logger,
	})

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("http_server_start", zap.String("addr", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_server_shutdown_error", zap.Error(err))
	} else {
		logger.Info("http_server_stopped")
	}
}

func newTracerProvider(ctx context.Context, endpoint string) (*sdktrace.TracerProvider, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(config.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build resource: %w", err)
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
	), nil
}
