package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	appaccount "github.com/minimart/minimart/internal/application/account"
	appcart "github.com/minimart/minimart/internal/application/cart"
	appcatalog "github.com/minimart/minimart/internal/application/catalog"
	appshipping "github.com/minimart/minimart/internal/application/shipping"
	"github.com/minimart/minimart/internal/application/workflow"
	"github.com/minimart/minimart/internal/domain/stock"
	"github.com/minimart/minimart/internal/pkg/metrics"
)

const headerAdminID = "X-Admin-ID"

// Handler exposes the application services over HTTP.
type Handler struct {
	workflow  *workflow.Service
	accounts  *appaccount.Service
	catalog   *appcatalog.Service
	carts     *appcart.Service
	shipments *appshipping.Service
	ledger    stock.Ledger

	metrics  *metrics.ServerMetrics
	log      *zap.Logger
	validate *validatorv10.Validate
}

type Deps struct {
	Workflow  *workflow.Service
	Accounts  *appaccount.Service
	Catalog   *appcatalog.Service
	Carts     *appcart.Service
	Shipments *appshipping.Service
	Ledger    stock.Ledger
	Metrics   *metrics.ServerMetrics
	Logger    *zap.Logger
}

func NewHandler(deps Deps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.L()
	}
	return &Handler{
		workflow:  deps.Workflow,
		accounts:  deps.Accounts,
		catalog:   deps.Catalog,
		carts:     deps.Carts,
		shipments: deps.Shipments,
		ledger:    deps.Ledger,
		metrics:   deps.Metrics,
		log:       logger.With(zap.String("component", "http_server")),
		validate:  newValidator(),
	}
}

// Router builds the gin engine with the middleware chain:
// recovery -> trace + request logger -> metrics -> access log -> handler.
func (h *Handler) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), h.requestContext(), h.httpMetrics(), h.accessLog())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	accounts := r.Group("/accounts")
	{
		accounts.POST("", h.handleRegisterAccount)
		accounts.GET("/:id", h.handleGetAccount)
		accounts.PUT("/:id/contact", h.handleUpdateContact)
		accounts.GET("/:id/loyalty", h.handleLoyaltyBalance)
		accounts.POST("/:id/loyalty/redeem", h.handleRedeemPoints)
	}

	r.POST("/categories", h.handleCreateCategory)
	products := r.Group("/products")
	{
		products.POST("", h.handleCreateProduct)
		products.GET("", h.handleListProducts)
		products.GET("/:id", h.handleGetProduct)
		products.PUT("/:id/price", h.handleChangePrice)
	}

	carts := r.Group("/carts/:clientID")
	{
		carts.GET("", h.handleGetCart)
		carts.GET("/total", h.handleCartTotal)
		carts.POST("/items", h.handleCartAddItem)
		carts.DELETE("/items/:productID", h.handleCartRemoveItem)
		carts.POST("/promo", h.handleApplyPromo)
	}

	orders := r.Group("/orders")
	{
		orders.POST("", h.handleCreateOrder)
		orders.GET("/:id", h.handleGetOrder)
		orders.POST("/:id/items", h.handleOrderAddItem)
		orders.DELETE("/:id/items/:productID", h.handleOrderRemoveItem)
		orders.POST("/:id/checkout", h.handleCheckout)
		orders.POST("/:id/payment", h.handlePay)
		orders.POST("/:id/cancel", h.handleCancelOrder)
		orders.POST("/:id/advance", h.handleAdvanceShipment)
		orders.GET("/:id/shipment", h.handleOrderShipment)
	}

	shipments := r.Group("/shipments")
	{
		shipments.GET("/:id", h.handleGetShipment)
		shipments.POST("/:id/track", h.handleTrackShipment)
	}

	admin := r.Group("/admin")
	{
		admin.PUT("/stock", h.handleSetStock)
		admin.GET("/stock", h.handleGetStock)
	}

	return r
}
