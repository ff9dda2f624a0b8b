package httptransport

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appcart "github.com/minimart/minimart/internal/application/cart"
	domcart "github.com/minimart/minimart/internal/domain/cart"
)

type cartResponse struct {
	ClientID string         `json:"client_id"`
	Items    map[string]int `json:"items"`
	Promo    *promoPayload  `json:"promo,omitempty"`
}

type promoPayload struct {
	Code       string `json:"code"`
	PercentOff string `json:"percent_off"`
	ExpiresAt  string `json:"expires_at"`
}

func cartResponseFrom(c *domcart.Cart) cartResponse {
	res := cartResponse{ClientID: c.ClientID, Items: c.Items}
	if c.Promo != nil {
		res.Promo = &promoPayload{
			Code:       c.Promo.Code,
			PercentOff: c.Promo.PercentOff.String(),
			ExpiresAt:  c.Promo.ExpiresAt.Format(time.RFC3339),
		}
	}
	return res
}

func (h *Handler) handleGetCart(c *gin.Context) {
	cart, err := h.carts.Get(c.Request.Context(), c.Param("clientID"))
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponseFrom(cart))
}

func (h *Handler) handleCartTotal(c *gin.Context) {
	total, err := h.carts.Total(c.Request.Context(), c.Param("clientID"))
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"client_id": c.Param("clientID"),
		"total":     total.String(),
	})
}

type cartAddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

func (h *Handler) handleCartAddItem(c *gin.Context) {
	var req cartAddItemRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	cart, err := h.carts.AddItem(c.Request.Context(), appcart.AddItemInput{
		ClientID:  c.Param("clientID"),
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponseFrom(cart))
}

func (h *Handler) handleCartRemoveItem(c *gin.Context) {
	cart, err := h.carts.RemoveItem(c.Request.Context(), appcart.RemoveItemInput{
		ClientID:  c.Param("clientID"),
		ProductID: c.Param("productID"),
	})
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponseFrom(cart))
}

func (h *Handler) handleApplyPromo(c *gin.Context) {
	var req applyPromoRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	cart, err := h.carts.ApplyPromo(c.Request.Context(), appcart.ApplyPromoInput{
		ClientID:   c.Param("clientID"),
		Code:       req.Code,
		PercentOff: req.PercentOff,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponseFrom(cart))
}
