package httptransport

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// newValidator configures request validation, including the struct-level
// promo rule that tags alone cannot express.
func newValidator() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterStructValidation(applyPromoStructValidation, applyPromoRequest{})
	return v
}

type applyPromoRequest struct {
	Code       string          `json:"code" validate:"required"`
	PercentOff decimal.Decimal `json:"percent_off"`
	ExpiresAt  time.Time       `json:"expires_at" validate:"required"`
}

// applyPromoStructValidation keeps the discount inside (0, 100].
func applyPromoStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(applyPromoRequest)
	if !req.PercentOff.IsPositive() || req.PercentOff.GreaterThan(decimal.NewFromInt(100)) {
		sl.ReportError(req.PercentOff, "percent_off", "PercentOff", "percent_range", "must be in (0, 100]")
	}
}

// bindAndValidate binds the JSON body into out and validates it. On failure
// it writes the 400 itself and returns false so handlers can short-circuit.
func (h *Handler) bindAndValidate(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid_request_body",
			"msg":   err.Error(),
		})
		return false
	}
	if err := h.validate.Struct(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation_failed",
			"fields": validationErrorsToMap(err),
		})
		return false
	}
	return true
}

func validationErrorsToMap(err error) map[string]string {
	out := map[string]string{}
	if ve, ok := err.(validatorv10.ValidationErrors); ok {
		for _, fe := range ve {
			out[fe.StructNamespace()] = fe.Error()
		}
	} else {
		out["error"] = err.Error()
	}
	return out
}
