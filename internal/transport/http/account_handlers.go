package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appaccount "github.com/minimart/minimart/internal/application/account"
	domaccount "github.com/minimart/minimart/internal/domain/account"
	"github.com/minimart/minimart/internal/domain/address"
)

type addressPayload struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (p addressPayload) toDomain() address.Address {
	return address.Address{
		Street:     p.Street,
		City:       p.City,
		PostalCode: p.PostalCode,
		Country:    p.Country,
	}
}

func addressPayloadFrom(a address.Address) addressPayload {
	return addressPayload{
		Street:     a.Street,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

type registerAccountRequest struct {
	Name    string         `json:"name" validate:"required"`
	Email   string         `json:"email" validate:"required,email"`
	Phone   string         `json:"phone"`
	Address addressPayload `json:"address"`
	Role    string         `json:"role" validate:"omitempty,oneof=client admin"`
}

type accountResponse struct {
	AccountID string         `json:"account_id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone,omitempty"`
	Address   addressPayload `json:"address"`
	Role      string         `json:"role"`
}

func accountResponseFrom(a *domaccount.Account) accountResponse {
	return accountResponse{
		AccountID: a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Phone:     a.Phone,
		Address:   addressPayloadFrom(a.Address),
		Role:      string(a.Role),
	}
}

func (h *Handler) handleRegisterAccount(c *gin.Context) {
	var req registerAccountRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	acct, err := h.accounts.Register(c.Request.Context(), appaccount.RegisterInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address.toDomain(),
		Role:    domaccount.Role(req.Role),
	})
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.Header("Location", "/accounts/"+acct.ID)
	c.JSON(http.StatusCreated, accountResponseFrom(acct))
}

func (h *Handler) handleGetAccount(c *gin.Context) {
	acct, err := h.accounts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, accountResponseFrom(acct))
}

type updateContactRequest struct {
	Phone   string         `json:"phone"`
	Address addressPayload `json:"address"`
}

func (h *Handler) handleUpdateContact(c *gin.Context) {
	var req updateContactRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	acct, err := h.accounts.UpdateContact(c.Request.Context(), appaccount.UpdateContactInput{
		AccountID: c.Param("id"),
		Phone:     req.Phone,
		Address:   req.Address.toDomain(),
	})
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, accountResponseFrom(acct))
}

func (h *Handler) handleLoyaltyBalance(c *gin.Context) {
	acct, err := h.accounts.LoyaltyBalance(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"client_id": acct.ClientID,
		"points":    acct.Points,
	})
}

type redeemPointsRequest struct {
	Points int64 `json:"points" validate:"required,min=1"`
}

func (h *Handler) handleRedeemPoints(c *gin.Context) {
	var req redeemPointsRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	acct, err := h.accounts.RedeemPoints(c.Request.Context(), c.Param("id"), req.Points)
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"client_id": acct.ClientID,
		"points":    acct.Points,
	})
}
