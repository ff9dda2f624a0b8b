package httptransport

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domshipping "github.com/minimart/minimart/internal/domain/shipping"
)

type shipmentResponse struct {
	ShipmentID  string             `json:"shipment_id"`
	OrderID     string             `json:"order_id"`
	Destination addressPayload     `json:"destination"`
	Status      domshipping.Status `json:"status"`
	CourierRef  string             `json:"courier_ref,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func shipmentResponseFrom(s *domshipping.Shipment) shipmentResponse {
	return shipmentResponse{
		ShipmentID:  s.ID,
		OrderID:     s.OrderID,
		Destination: addressPayloadFrom(s.Destination),
		Status:      s.Status,
		CourierRef:  s.CourierRef,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (h *Handler) handleGetShipment(c *gin.Context) {
	s, err := h.shipments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipmentResponseFrom(s))
}

// handleTrackShipment refreshes the status from the carrier before
// answering; carrier trouble falls back to the stored status.
func (h *Handler) handleTrackShipment(c *gin.Context) {
	s, err := h.shipments.Track(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipmentResponseFrom(s))
}
