package models

import (
	"github.com/koliko-eats/koliko-orders-service/internal/geo"
)

// RestaurantCandidate is a read-only directory snapshot of a restaurant
// considered during matching. Never mutated by the pipeline.
type RestaurantCandidate struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Location     geo.Point      `json:"location"`
	Schedule     WeeklySchedule `json:"schedule"`
	TariffAPIKey string         `json:"-"`
}
