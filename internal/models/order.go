package models

import (
	"github.com/koliko-eats/koliko-orders-service/internal/geo"
)

// FulfillmentType says how the customer receives the order.
type FulfillmentType string

const (
	FulfillmentDelivery FulfillmentType = "DELIVERY"
	FulfillmentPickup   FulfillmentType = "PICKUP"
	FulfillmentDineIn   FulfillmentType = "DINE_IN"
)

// Valid reports whether the fulfillment type is one of the known values.
func (f FulfillmentType) Valid() bool {
	switch f {
	case FulfillmentDelivery, FulfillmentPickup, FulfillmentDineIn:
		return true
	}
	return false
}

// SupplementSelection is a requested supplement on a cart line.
type SupplementSelection struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// CartLine is one dish entry in the customer's cart.
type CartLine struct {
	DishID      string                `json:"dish_id"`
	Quantity    int                   `json:"quantity"`
	Supplements []SupplementSelection `json:"supplements,omitempty"`
	Spicy       bool                  `json:"spicy,omitempty"`
}

// QuoteRequest is the input to the pricing pipeline.
type QuoteRequest struct {
	FulfillmentType       FulfillmentType `json:"fulfillment_type"`
	CustomerID            string          `json:"customer_id"`
	Address               *geo.Point      `json:"address,omitempty"`
	RestaurantID          string          `json:"restaurant_id,omitempty"`
	Lines                 []CartLine      `json:"lines"`
	PromotionCode         string          `json:"promotion_code,omitempty"`
	LoyaltyPointsToRedeem int64           `json:"loyalty_points_to_redeem,omitempty"`
}

// PricedLine is a cart line after price resolution. Amounts are XOF,
// which has no subunit, so all money is plain int64.
type PricedLine struct {
	DishID           string `json:"dish_id"`
	Quantity         int    `json:"quantity"`
	UnitDishPrice    int64  `json:"unit_dish_price"`
	SupplementsTotal int64  `json:"supplements_total"`
	LineTotal        int64  `json:"line_total"`
}

// DeliveryFee is the fee breakdown attached to a priced order.
type DeliveryFee struct {
	Amount     int64   `json:"amount"`
	ZoneLabel  string  `json:"zone_label"`
	DistanceKm float64 `json:"distance_km"`
	ZoneID     *string `json:"zone_id,omitempty"`
}

// PricedOrder is the result of the pricing pipeline, ready for the
// order-creation workflow to persist.
type PricedOrder struct {
	RestaurantID      string       `json:"restaurant_id"`
	RestaurantName    string       `json:"restaurant_name"`
	Currency          string       `json:"currency"`
	Lines             []PricedLine `json:"lines"`
	NetAmount         int64        `json:"net_amount"`
	TaxAmount         int64        `json:"tax_amount"`
	DeliveryFee       DeliveryFee  `json:"delivery_fee"`
	Discount          int64        `json:"discount"`
	LoyaltyPointsUsed int64        `json:"loyalty_points_used"`
	TotalPayable      int64        `json:"total_payable"`
}

// CustomerStatus mirrors the customer directory's lifecycle states.
type CustomerStatus string

const (
	CustomerStatusActive  CustomerStatus = "active"
	CustomerStatusDeleted CustomerStatus = "deleted"
)

// Customer is the directory snapshot the pipeline resolves per request.
type Customer struct {
	ID            string         `json:"id"`
	Email         string         `json:"email"`
	FullName      string         `json:"full_name"`
	Status        CustomerStatus `json:"status"`
	LoyaltyTier   string         `json:"loyalty_tier"`
	LoyaltyPoints int64          `json:"loyalty_points"`
}
