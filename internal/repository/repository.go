// Package repository defines the catalog and restaurant-directory
// collaborator interfaces the pricing pipeline consumes, plus their
// Postgres and Redis-backed implementations.
package repository

import (
	"context"

	"github.com/koliko-eats/koliko-orders-service/internal/models"
)

// CatalogRepository fetches active dish snapshots for pricing.
type CatalogRepository interface {
	// GetDishes returns the active catalog entries for the given IDs.
	// Missing or inactive dishes are simply absent from the result.
	GetDishes(ctx context.Context, ids []string) ([]models.DishCatalogEntry, error)
}

// RestaurantDirectory exposes the restaurant snapshots used during
// matching. Implementations must be safe for concurrent use: matching
// fans out per-candidate checks.
type RestaurantDirectory interface {
	ListActiveRestaurants(ctx context.Context) ([]models.RestaurantCandidate, error)

	// GetRestaurant returns nil, nil when the restaurant is absent or
	// inactive.
	GetRestaurant(ctx context.Context, id string) (*models.RestaurantCandidate, error)

	// CountDishesAvailableAt counts how many of the given dish IDs the
	// restaurant currently carries.
	CountDishesAvailableAt(ctx context.Context, restaurantID string, dishIDs []string) (int, error)
}
