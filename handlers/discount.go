package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/srikanth-zersys/divedream-sub002/models"
	"github.com/srikanth-zersys/divedream-sub002/services/discount"
)

// DiscountHandler exposes discount code validation.
type DiscountHandler struct {
	Validator discount.Validator
}

// NewDiscountHandler builds the handler.
func NewDiscountHandler(validator discount.Validator) *DiscountHandler {
	return &DiscountHandler{Validator: validator}
}

// ValidateDiscountCode handles POST /api/discount-codes/validate. It
// never consumes a redemption; that happens when the booking persists.
func (h *DiscountHandler) ValidateDiscountCode(c *gin.Context) {
	var req models.ValidateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	outcome, err := h.Validator.Validate(c.Request.Context(), req.Code, req.ScheduleID, req.Subtotal)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}
