// Package matching selects or validates the restaurant that will
// fulfill an order.
package matching

import (
	"context"
	"sync"
	"time"

	"github.com/koliko-eats/koliko-orders-service/internal/apperrors"
	"github.com/koliko-eats/koliko-orders-service/internal/geo"
	"github.com/koliko-eats/koliko-orders-service/internal/logging"
	"github.com/koliko-eats/koliko-orders-service/internal/models"
	"github.com/koliko-eats/koliko-orders-service/internal/repository"
)

// Matcher finds the nearest open restaurant covering a cart, or
// validates a client-chosen restaurant for pickup and dine-in.
type Matcher struct {
	directory repository.RestaurantDirectory
	logger    *logging.Logger
}

func NewMatcher(directory repository.RestaurantDirectory) *Matcher {
	return &Matcher{
		directory: directory,
		logger:    logging.NewLogger("matcher"),
	}
}

// candidateResult is one restaurant's eligibility check outcome.
type candidateResult struct {
	restaurant models.RestaurantCandidate
	distanceKm float64
	eligible   bool
	err        error
}

// FindEligibleDeliveryRestaurant returns the open restaurant nearest to
// the address whose menu covers every requested dish. Candidates are
// checked concurrently; the reduce step is deterministic (minimum
// distance, ties broken by ID).
func (m *Matcher) FindEligibleDeliveryRestaurant(ctx context.Context, address geo.Point, dishIDs []string, at time.Time) (*models.RestaurantCandidate, error) {
	candidates, err := m.directory.ListActiveRestaurants(ctx)
	if err != nil {
		return nil, err
	}

	dishIDs = dedupe(dishIDs)

	// Schedule checks are local; cut closed restaurants before fanning
	// out the per-candidate menu queries.
	open := candidates[:0]
	for _, c := range candidates {
		if c.Schedule.IsOpenAt(at) {
			open = append(open, c)
		}
	}

	results := make([]candidateResult, len(open))
	var wg sync.WaitGroup
	for i := range open {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.checkCandidate(ctx, open[i], address, dishIDs)
		}(i)
	}
	wg.Wait()

	var best *candidateResult
	for i := range results {
		r := &results[i]
		if r.err != nil {
			return nil, r.err
		}
		if !r.eligible {
			continue
		}
		if best == nil ||
			r.distanceKm < best.distanceKm ||
			(r.distanceKm == best.distanceKm && r.restaurant.ID < best.restaurant.ID) {
			best = r
		}
	}

	if best == nil {
		m.logger.Info("no eligible restaurant", logging.Fields{
			"dish_count":      len(dishIDs),
			"candidate_count": len(candidates),
		})
		return nil, apperrors.ErrNoEligibleRestaurant
	}

	restaurant := best.restaurant
	return &restaurant, nil
}

func (m *Matcher) checkCandidate(ctx context.Context, c models.RestaurantCandidate, address geo.Point, dishIDs []string) candidateResult {
	count, err := m.directory.CountDishesAvailableAt(ctx, c.ID, dishIDs)
	if err != nil {
		return candidateResult{err: err}
	}
	if count != len(dishIDs) {
		return candidateResult{}
	}
	return candidateResult{
		restaurant: c,
		distanceKm: geo.DistanceKm(address, c.Location),
		eligible:   true,
	}
}

// ValidateRestaurantChoice checks a client-chosen restaurant for pickup
// or dine-in orders.
func (m *Matcher) ValidateRestaurantChoice(ctx context.Context, restaurantID string, dishIDs []string, at time.Time) (*models.RestaurantCandidate, error) {
	restaurant, err := m.directory.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if restaurant == nil {
		return nil, apperrors.ErrRestaurantNotFound.WithDetail("restaurant %s", restaurantID)
	}

	if !restaurant.Schedule.IsOpenAt(at) {
		return nil, apperrors.ErrRestaurantClosed
	}

	dishIDs = dedupe(dishIDs)
	count, err := m.directory.CountDishesAvailableAt(ctx, restaurantID, dishIDs)
	if err != nil {
		return nil, err
	}
	if count != len(dishIDs) {
		return nil, apperrors.ErrMenuMismatch.WithDetail("restaurant %s carries %d of %d requested dishes", restaurantID, count, len(dishIDs))
	}

	return restaurant, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
