package tariff

import (
	"context"
	"time"

	"github.com/koliko-eats/koliko-orders-service/internal/apperrors"
	"github.com/koliko-eats/koliko-orders-service/internal/geo"
	"github.com/koliko-eats/koliko-orders-service/internal/logging"
	"github.com/koliko-eats/koliko-orders-service/internal/metrics"
	"github.com/koliko-eats/koliko-orders-service/internal/models"
)

// Zone is one tariff zone returned by the external delivery partner.
type Zone struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Location geo.Point `json:"location"`
	Price    int64     `json:"price"`
}

// ZoneProvider fetches a restaurant's tariff zones from the delivery
// partner, keyed by the restaurant's partner API key.
type ZoneProvider interface {
	GetZones(ctx context.Context, apiKey string, offset, limit int) ([]Zone, error)
}

const zonePageSize = 100

// Calculator resolves delivery fees. The internal table is always
// available; the external provider, when the restaurant has a partner
// key, takes precedence but is strictly best-effort: errors, timeouts
// and empty responses degrade to the table.
type Calculator struct {
	provider        ZoneProvider
	providerTimeout time.Duration
	logger          *logging.Logger
	metrics         *metrics.Registry
}

// NewCalculator builds a fee calculator. provider may be nil, in which
// case only the internal table is used.
func NewCalculator(provider ZoneProvider, providerTimeout time.Duration, m *metrics.Registry) *Calculator {
	return &Calculator{
		provider:        provider,
		providerTimeout: providerTimeout,
		logger:          logging.NewLogger("tariff"),
		metrics:         m,
	}
}

// Fee computes the delivery fee for a customer location and a matched
// restaurant. DistanceKm in the result is always the customer-to-
// restaurant distance, even when an external zone price wins, so the
// two paths display consistently.
func (c *Calculator) Fee(ctx context.Context, customer geo.Point, restaurant *models.RestaurantCandidate) (models.DeliveryFee, error) {
	if restaurant == nil {
		return models.DeliveryFee{}, apperrors.ErrRestaurantNotFound.WithDetail("no restaurant available for fee computation")
	}

	distanceKm := geo.DistanceKm(customer, restaurant.Location)
	amount, label := tableFee(distanceKm, restaurant.Name)
	fee := models.DeliveryFee{
		Amount:     amount,
		ZoneLabel:  label,
		DistanceKm: distanceKm,
	}

	if c.provider == nil || restaurant.TariffAPIKey == "" {
		return fee, nil
	}

	zone, ok := c.partnerZone(ctx, customer, restaurant)
	if !ok {
		c.fellBack()
		return fee, nil
	}

	fee.Amount = zone.Price
	fee.ZoneLabel = zone.Name
	zoneID := zone.ID
	fee.ZoneID = &zoneID
	return fee, nil
}

// partnerZone fetches the partner's zones and picks the one nearest to
// the customer. Any failure reports ok=false and the caller falls back.
func (c *Calculator) partnerZone(ctx context.Context, customer geo.Point, restaurant *models.RestaurantCandidate) (Zone, bool) {
	ctx, cancel := context.WithTimeout(ctx, c.providerTimeout)
	defer cancel()

	zones, err := c.provider.GetZones(ctx, restaurant.TariffAPIKey, 0, zonePageSize)
	if err != nil {
		c.logger.Warn("tariff provider unavailable, using internal table", logging.Fields{
			"restaurant_id": restaurant.ID,
			"error":         err.Error(),
		})
		return Zone{}, false
	}
	if len(zones) == 0 {
		return Zone{}, false
	}

	best := zones[0]
	bestDist := geo.DistanceKm(customer, best.Location)
	for _, z := range zones[1:] {
		d := geo.DistanceKm(customer, z.Location)
		// Tie-break on ID for deterministic selection.
		if d < bestDist || (d == bestDist && z.ID < best.ID) {
			best = z
			bestDist = d
		}
	}
	return best, true
}

func (c *Calculator) fellBack() {
	if c.metrics != nil {
		c.metrics.TariffFallbacks.Inc()
	}
}
