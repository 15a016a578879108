package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/srikanth-zersys/divedream-sub002/models"
	"github.com/srikanth-zersys/divedream-sub002/services/quote"
)

// QuoteHandler exposes quote management and conversion.
type QuoteHandler struct {
	Quotes quote.Service
}

// NewQuoteHandler builds the handler.
func NewQuoteHandler(quotes quote.Service) *QuoteHandler {
	return &QuoteHandler{Quotes: quotes}
}

// CreateQuote handles POST /api/quotes.
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req models.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	q, err := h.Quotes.Create(c.Request.Context(), req)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"quote": q})
}

// GetQuote handles GET /api/quotes/:id.
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	q, err := h.Quotes.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "quote not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"quote": q})
}

// SendQuote handles POST /api/quotes/:id/send.
func (h *QuoteHandler) SendQuote(c *gin.Context) {
	h.applyTransition(c, h.Quotes.Send)
}

// ViewQuote handles POST /api/quotes/:id/view (customer portal open).
func (h *QuoteHandler) ViewQuote(c *gin.Context) {
	h.applyTransition(c, h.Quotes.MarkViewed)
}

// AcceptQuote handles POST /api/quotes/:id/accept.
func (h *QuoteHandler) AcceptQuote(c *gin.Context) {
	h.applyTransition(c, h.Quotes.Accept)
}

// RejectQuote handles POST /api/quotes/:id/reject.
func (h *QuoteHandler) RejectQuote(c *gin.Context) {
	h.applyTransition(c, h.Quotes.Reject)
}

// ConvertQuote handles POST /api/quotes/:id/convert.
func (h *QuoteHandler) ConvertQuote(c *gin.Context) {
	booking, err := h.Quotes.Convert(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}

func (h *QuoteHandler) applyTransition(c *gin.Context, fn func(ctx context.Context, quoteID string) (*models.Quote, error)) {
	q, err := fn(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quote": q})
}
