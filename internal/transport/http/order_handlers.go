package httptransport

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/minimart/minimart/internal/application/workflow"
	domorder "github.com/minimart/minimart/internal/domain/order"
	dompayment "github.com/minimart/minimart/internal/domain/payment"
	"github.com/minimart/minimart/internal/domain/stock"
)

type createOrderRequest struct {
	ClientID string `json:"client_id" validate:"required"`
}

type orderStateResponse struct {
	OrderID         string          `json:"order_id"`
	Status          domorder.Status `json:"status"`
	AwaitingPayment bool            `json:"awaiting_payment"`
	Total           string          `json:"total"`
}

func stateResponse(res *workflow.OrderResult) orderStateResponse {
	return orderStateResponse{
		OrderID:         res.OrderID,
		Status:          res.Status,
		AwaitingPayment: res.AwaitingPayment,
		Total:           res.Total.String(),
	}
}

func (h *Handler) handleCreateOrder(c *gin.Context) {
	var req createOrderRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	res, err := h.workflow.CreateOrder(c.Request.Context(), workflow.CreateOrderInput{ClientID: req.ClientID})
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.Header("Location", "/orders/"+res.OrderID)
	c.JSON(http.StatusCreated, stateResponse(res))
}

type orderItemResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

type orderResponse struct {
	OrderID         string              `json:"order_id"`
	ClientID        string              `json:"client_id"`
	Items           []orderItemResponse `json:"items"`
	Total           string              `json:"total"`
	Status          domorder.Status     `json:"status"`
	AwaitingPayment bool                `json:"awaiting_payment"`
	ShipmentID      string              `json:"shipment_id,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func (h *Handler) handleGetOrder(c *gin.Context) {
	o, err := h.workflow.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeDomainError(c, err)
		return
	}

	items := make([]orderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.String(),
			Subtotal:  item.Subtotal().String(),
		})
	}
	c.JSON(http.StatusOK, orderResponse{
		OrderID:         o.ID,
		ClientID:        o.ClientID,
		Items:           items,
		Total:           o.Total.String(),
		Status:          o.Status,
		AwaitingPayment: o.AwaitingPayment,
		ShipmentID:      o.ShipmentID,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	})
}

type addOrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

func (h *Handler) handleOrderAddItem(c *gin.Context) {
	var req addOrderItemRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	res, err := h.workflow.AddItem(c.Request.Context(), workflow.AddItemInput{
		OrderID:   c.Param("id"),
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, stateResponse(res))
}

func (h *Handler) handleOrderRemoveItem(c *gin.Context) {
	res, err := h.workflow.RemoveItem(c.Request.Context(), workflow.RemoveItemInput{
		OrderID:   c.Param("id"),
		ProductID: c.Param("productID"),
	})
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, stateResponse(res))
}

type checkoutRequest struct {
	WarehouseID string `json:"warehouse_id" validate:"required"`
}

func (h *Handler) handleCheckout(c *gin.Context) {
	var req checkoutRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	res, err := h.workflow.Checkout(c.Request.Context(), workflow.CheckoutInput{
		OrderID:     c.Param("id"),
		WarehouseID: req.WarehouseID,
	})
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, stateResponse(res))
}

type payRequest struct {
	Type   string          `json:"type" validate:"required,oneof=card e_wallet"`
	Amount decimal.Decimal `json:"amount"`
}

type payResponse struct {
	OrderID        string            `json:"order_id"`
	OrderStatus    domorder.Status   `json:"order_status"`
	PaymentID      string            `json:"payment_id"`
	PaymentStatus  dompayment.Status `json:"payment_status"`
	PointsCredited int64             `json:"points_credited"`
}

func (h *Handler) handlePay(c *gin.Context) {
	var req payRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	res, err := h.workflow.Pay(c.Request.Context(), workflow.PayInput{
		OrderID: c.Param("id"),
		Type:    dompayment.Type(req.Type),
		Amount:  req.Amount,
	})
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, payResponse{
		OrderID:        res.OrderID,
		OrderStatus:    res.OrderStatus,
		PaymentID:      res.PaymentID,
		PaymentStatus:  res.PaymentStatus,
		PointsCredited: res.PointsCredited,
	})
}

func (h *Handler) handleCancelOrder(c *gin.Context) {
	res, err := h.workflow.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, stateResponse(res))
}

type advanceShipmentRequest struct {
	Next string `json:"next" validate:"required,oneof=in_delivery delivered"`
}

func (h *Handler) handleAdvanceShipment(c *gin.Context) {
	var req advanceShipmentRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	res, err := h.workflow.AdvanceShipment(c.Request.Context(), workflow.AdvanceShipmentInput{
		OrderID: c.Param("id"),
		Next:    domorder.Status(req.Next),
	})
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, stateResponse(res))
}

func (h *Handler) handleOrderShipment(c *gin.Context) {
	s, err := h.shipments.GetByOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipmentResponseFrom(s))
}

type setStockRequest struct {
	WarehouseID string `json:"warehouse_id" validate:"required"`
	ProductID   string `json:"product_id" validate:"required"`
	Quantity    int    `json:"quantity" validate:"min=0"`
}

func (h *Handler) handleSetStock(c *gin.Context) {
	if !h.requireAdmin(c, "stock.set") {
		return
	}
	var req setStockRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	key := stock.Key{WarehouseID: req.WarehouseID, ProductID: req.ProductID}
	if err := h.ledger.SetStock(c.Request.Context(), key, req.Quantity); err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"warehouse_id": req.WarehouseID,
		"product_id":   req.ProductID,
		"available":    req.Quantity,
	})
}

func (h *Handler) handleGetStock(c *gin.Context) {
	if !h.requireAdmin(c, "stock.read") {
		return
	}
	key := stock.Key{
		WarehouseID: c.Query("warehouse_id"),
		ProductID:   c.Query("product_id"),
	}
	if key.WarehouseID == "" || key.ProductID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "warehouse_id and product_id are required"})
		return
	}

	ctx := c.Request.Context()
	available, err := h.ledger.GetStock(ctx, key)
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	held, err := h.ledger.Held(ctx, key)
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"warehouse_id": key.WarehouseID,
		"product_id":   key.ProductID,
		"available":    available,
		"held":         held,
	})
}

// requireAdmin gates admin endpoints on the X-Admin-ID header and records
// the action in the audit log.
func (h *Handler) requireAdmin(c *gin.Context, action string) bool {
	adminID := c.GetHeader(headerAdminID)
	if adminID == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "X-Admin-ID header is required"})
		return false
	}
	if err := h.accounts.Authorize(c.Request.Context(), adminID, action); err != nil {
		h.writeDomainError(c, err)
		return false
	}
	return true
}
