package service

import (
	"github.com/koliko-eats/koliko-orders-service/internal/apperrors"
	"github.com/koliko-eats/koliko-orders-service/internal/models"
)

// ValidateQuoteRequest checks the request shape before the pipeline
// touches any collaborator. Catalog and schedule checks come later;
// this is purely structural.
func ValidateQuoteRequest(req *models.QuoteRequest) error {
	if !req.FulfillmentType.Valid() {
		return apperrors.NewValidationError("fulfillment_type", "must be DELIVERY, PICKUP or DINE_IN")
	}

	if req.CustomerID == "" {
		return apperrors.NewValidationError("customer_id", "customer ID is required")
	}

	if len(req.Lines) == 0 {
		return apperrors.ErrEmptyCart
	}

	for _, line := range req.Lines {
		if line.DishID == "" {
			return apperrors.NewValidationError("lines", "dish ID is required")
		}
		if line.Quantity < 1 {
			return apperrors.NewValidationError("lines", "quantity must be at least 1")
		}
		for _, s := range line.Supplements {
			if s.ID == "" {
				return apperrors.NewValidationError("supplements", "supplement ID is required")
			}
			if s.Quantity < 1 {
				return apperrors.NewValidationError("supplements", "quantity must be at least 1")
			}
		}
	}

	if req.LoyaltyPointsToRedeem < 0 {
		return apperrors.NewValidationError("loyalty_points_to_redeem", "cannot be negative")
	}

	switch req.FulfillmentType {
	case models.FulfillmentDelivery:
		if req.Address == nil || !req.Address.Valid() {
			return apperrors.ErrInvalidAddress
		}
	case models.FulfillmentPickup, models.FulfillmentDineIn:
		if req.RestaurantID == "" {
			return apperrors.NewValidationError("restaurant_id", "restaurant ID is required for pickup and dine-in")
		}
	}

	return nil
}
