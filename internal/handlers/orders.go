package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/koliko-eats/koliko-orders-service/internal/logging"
	"github.com/koliko-eats/koliko-orders-service/internal/models"
)

// QuoteOrder handles POST /api/v1/orders/quote.
// It runs the pricing pipeline and returns the priced order the
// order-creation workflow will persist.
func (h *Handlers) QuoteOrder(c *gin.Context) {
	var req models.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind quote request", logging.Fields{"error": err.Error()})
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, err := h.orders.ComputePricedOrder(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}
