package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/srikanth-zersys/divedream-sub002/services/booking"
	"github.com/srikanth-zersys/divedream-sub002/services/discount"
	"github.com/srikanth-zersys/divedream-sub002/services/payment"
	"github.com/srikanth-zersys/divedream-sub002/services/pricing"
	"github.com/srikanth-zersys/divedream-sub002/services/quote"
	"github.com/srikanth-zersys/divedream-sub002/utils"
)

// respondDomainError maps domain error kinds onto HTTP statuses.
// Expected outcomes (full schedule, bad code, guard failures) get
// client statuses; anything unrecognized is a server error.
func respondDomainError(c *gin.Context, err error) {
	var capacityErr *booking.CapacityError
	if errors.As(err, &capacityErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "capacity exceeded",
			"requested": capacityErr.Requested,
			"available": capacityErr.Available,
		})
		return
	}

	var transitionErr *booking.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		utils.JSONError(c, http.StatusConflict, "invalid transition", transitionErr.Error())
		return
	}

	var validationErr *booking.ValidationError
	if errors.As(err, &validationErr) {
		utils.JSONError(c, http.StatusUnprocessableEntity, "validation failed", validationErr.Error())
		return
	}

	var pricingErr *pricing.ValidationError
	if errors.As(err, &pricingErr) {
		utils.JSONError(c, http.StatusUnprocessableEntity, "validation failed", pricingErr.Error())
		return
	}

	var rejection *discount.RejectionError
	if errors.As(err, &rejection) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "invalid discount code",
			"code":   rejection.Code,
			"reason": string(rejection.Reason),
		})
		return
	}

	var refundErr *payment.RefundExceedsAvailableError
	if errors.As(err, &refundErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     "refund exceeds available amount",
			"requested": refundErr.Requested,
			"available": refundErr.Available,
		})
		return
	}

	var failedErr *payment.FailedError
	if errors.As(err, &failedErr) {
		utils.JSONError(c, http.StatusPaymentRequired, "payment failed", failedErr.Error())
		return
	}

	var convertedErr *quote.AlreadyConvertedError
	if errors.As(err, &convertedErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error":      "quote already converted",
			"booking_id": convertedErr.BookingID,
		})
		return
	}

	var quoteStatusErr *quote.InvalidStatusError
	if errors.As(err, &quoteStatusErr) {
		utils.JSONError(c, http.StatusConflict, "invalid quote status", quoteStatusErr.Error())
		return
	}

	utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
}
