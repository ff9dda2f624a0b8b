package httptransport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appaccount "github.com/minimart/minimart/internal/application/account"
	appcart "github.com/minimart/minimart/internal/application/cart"
	appcatalog "github.com/minimart/minimart/internal/application/catalog"
	appshipping "github.com/minimart/minimart/internal/application/shipping"
	"github.com/minimart/minimart/internal/application/workflow"
	domaccount "github.com/minimart/minimart/internal/domain/account"
	domcart "github.com/minimart/minimart/internal/domain/cart"
	domcatalog "github.com/minimart/minimart/internal/domain/catalog"
	domloyalty "github.com/minimart/minimart/internal/domain/loyalty"
	domorder "github.com/minimart/minimart/internal/domain/order"
	dompayment "github.com/minimart/minimart/internal/domain/payment"
	domshipping "github.com/minimart/minimart/internal/domain/shipping"
	"github.com/minimart/minimart/internal/domain/stock"
	"github.com/minimart/minimart/internal/pkg/logging"
)

// writeDomainError maps sentinel errors onto HTTP statuses. Unclassified
// errors become 500 and are logged with the request context.
func (h *Handler) writeDomainError(c *gin.Context, err error) {
	status := classify(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("internal_error", zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func classify(err error) int {
	switch {
	case errors.Is(err, domorder.ErrNotFound),
		errors.Is(err, domorder.ErrItemNotFound),
		errors.Is(err, domcatalog.ErrNotFound),
		errors.Is(err, domcatalog.ErrCategoryNotFound),
		errors.Is(err, domaccount.ErrNotFound),
		errors.Is(err, domcart.ErrNotFound),
		errors.Is(err, domloyalty.ErrNotFound),
		errors.Is(err, domshipping.ErrNotFound),
		errors.Is(err, stock.ErrUnknownStock):
		return http.StatusNotFound

	case errors.Is(err, dompayment.ErrPaymentFailed):
		return http.StatusPaymentRequired

	case errors.Is(err, domaccount.ErrNotAdmin):
		return http.StatusForbidden

	case errors.Is(err, workflow.ErrStockUnavailable),
		errors.Is(err, workflow.ErrNoReservation),
		errors.Is(err, domorder.ErrInvalidTransition),
		errors.Is(err, domshipping.ErrInvalidTransition),
		errors.Is(err, domloyalty.ErrInsufficientPoints),
		errors.Is(err, dompayment.ErrInvalidStatus):
		return http.StatusConflict

	case errors.Is(err, workflow.ErrInvalidInput),
		errors.Is(err, workflow.ErrAmountMismatch),
		errors.Is(err, appaccount.ErrInvalidInput),
		errors.Is(err, appcatalog.ErrInvalidInput),
		errors.Is(err, appcart.ErrInvalidInput),
		errors.Is(err, appshipping.ErrInvalidInput),
		errors.Is(err, stock.ErrInvalidQuantity),
		errors.Is(err, domorder.ErrInvalidQuantity),
		errors.Is(err, domorder.ErrInvalidUnitPrice),
		errors.Is(err, domorder.ErrEmptyOrder),
		errors.Is(err, domcatalog.ErrInvalidPrice),
		errors.Is(err, domcatalog.ErrInvalidKind),
		errors.Is(err, domcatalog.ErrMissingDownload),
		errors.Is(err, domaccount.ErrInvalidRole),
		errors.Is(err, domaccount.ErrInvalidEmail),
		errors.Is(err, domcart.ErrInvalidQuantity),
		errors.Is(err, domcart.ErrPromoExpired),
		errors.Is(err, domloyalty.ErrInvalidPoints),
		errors.Is(err, dompayment.ErrInvalidAmount),
		errors.Is(err, dompayment.ErrInvalidType):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
