// Package handlers maps the HTTP surface onto the pricing pipeline.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/koliko-eats/koliko-orders-service/internal/apperrors"
	"github.com/koliko-eats/koliko-orders-service/internal/logging"
	"github.com/koliko-eats/koliko-orders-service/internal/models"
)

// OrderQuoter is the slice of the order service the handlers need.
type OrderQuoter interface {
	ComputePricedOrder(ctx context.Context, req *models.QuoteRequest) (*models.PricedOrder, error)
}

type Handlers struct {
	orders OrderQuoter
	logger *logging.Logger
}

func NewHandlers(orders OrderQuoter) *Handlers {
	return &Handlers{
		orders: orders,
		logger: logging.NewLogger("handlers"),
	}
}

// handleError translates the pipeline's error taxonomy to HTTP.
// Business-rule violations are 422: the request was well-formed, the
// kitchen just cannot serve it right now.
func handleError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		status = http.StatusBadRequest
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindBusinessRule:
		status = http.StatusUnprocessableEntity
	}

	body := gin.H{"error": err.Error()}
	if code := apperrors.CodeOf(err); code != "" {
		body["code"] = code
	} else {
		body["error"] = "internal error"
	}

	c.JSON(status, body)
}
