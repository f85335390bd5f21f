// Package service orchestrates the order pricing pipeline: resolve the
// customer, snapshot the catalog, match a restaurant, price the cart,
// apply tax, delivery fee and promotion/loyalty adjustments, and emit
// the resulting priced order.
package service

import (
	"context"
	"time"

	"github.com/koliko-eats/koliko-orders-service/internal/apperrors"
	"github.com/koliko-eats/koliko-orders-service/internal/clients"
	"github.com/koliko-eats/koliko-orders-service/internal/config"
	"github.com/koliko-eats/koliko-orders-service/internal/events"
	"github.com/koliko-eats/koliko-orders-service/internal/logging"
	"github.com/koliko-eats/koliko-orders-service/internal/matching"
	"github.com/koliko-eats/koliko-orders-service/internal/metrics"
	"github.com/koliko-eats/koliko-orders-service/internal/models"
	"github.com/koliko-eats/koliko-orders-service/internal/pricing"
	"github.com/koliko-eats/koliko-orders-service/internal/repository"
	"github.com/koliko-eats/koliko-orders-service/internal/tariff"
)

// OrderService runs the pricing pipeline. It holds no mutable state;
// every quote computes against its own catalog and directory snapshot,
// so identical inputs against an unchanged snapshot price identically.
type OrderService struct {
	catalog   repository.CatalogRepository
	matcher   *matching.Matcher
	feeCalc   *tariff.Calculator
	customers clients.CustomerClient
	loyalty   clients.LoyaltyClient
	publisher events.Publisher
	metrics   *metrics.Registry
	config    *config.Config
	logger    *logging.Logger
	now       func() time.Time
}

func NewOrderService(
	catalog repository.CatalogRepository,
	matcher *matching.Matcher,
	feeCalc *tariff.Calculator,
	customers clients.CustomerClient,
	loyalty clients.LoyaltyClient,
	publisher events.Publisher,
	m *metrics.Registry,
	cfg *config.Config,
) *OrderService {
	return &OrderService{
		catalog:   catalog,
		matcher:   matcher,
		feeCalc:   feeCalc,
		customers: customers,
		loyalty:   loyalty,
		publisher: publisher,
		metrics:   m,
		config:    cfg,
		logger:    logging.NewLogger("order-service"),
		now:       time.Now,
	}
}

// ComputePricedOrder runs the full pipeline for one quote request.
// Validation and not-found errors abort immediately; no partial order
// is ever returned.
func (s *OrderService) ComputePricedOrder(ctx context.Context, req *models.QuoteRequest) (*models.PricedOrder, error) {
	start := s.now()
	order, err := s.compute(ctx, req)
	s.observe(ctx, req, order, err, s.now().Sub(start))
	return order, err
}

func (s *OrderService) compute(ctx context.Context, req *models.QuoteRequest) (*models.PricedOrder, error) {
	if err := ValidateQuoteRequest(req); err != nil {
		return nil, err
	}

	customer, err := s.resolveCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}

	dishIDs := uniqueDishIDs(req.Lines)
	catalog, err := s.catalog.GetDishes(ctx, dishIDs)
	if err != nil {
		return nil, err
	}
	// The catalog answers only with dishes that still exist and are
	// active; any gap means the cart references a dead dish.
	if len(catalog) != len(dishIDs) {
		return nil, apperrors.ErrDishNotFound.WithDetail("%d of %d dishes available", len(catalog), len(dishIDs))
	}

	at := s.now()
	var restaurant *models.RestaurantCandidate
	if req.FulfillmentType == models.FulfillmentDelivery {
		restaurant, err = s.matcher.FindEligibleDeliveryRestaurant(ctx, *req.Address, dishIDs, at)
	} else {
		restaurant, err = s.matcher.ValidateRestaurantChoice(ctx, req.RestaurantID, dishIDs, at)
	}
	if err != nil {
		return nil, err
	}

	lines, netAmount, err := pricing.PriceLines(req.Lines, catalog)
	if err != nil {
		return nil, err
	}

	taxAmount, ok := pricing.Tax(netAmount, s.config.Pricing.TaxRate)
	if !ok {
		// Fail-open: a broken tax computation must never block the
		// order, but it has to be visible for reconciliation.
		s.logger.Warn("tax computation failed open to zero", logging.Fields{
			"net_amount": netAmount,
			"tax_rate":   s.config.Pricing.TaxRate,
		})
		s.metrics.TaxFailOpens.Inc()
	}

	fee := models.DeliveryFee{}
	if req.FulfillmentType == models.FulfillmentDelivery {
		fee, err = s.feeCalc.Fee(ctx, *req.Address, restaurant)
		if err != nil {
			return nil, err
		}
	}

	discount, pointsUsed, pointsValue, err := s.applyAdjustments(ctx, req, customer, netAmount, lines)
	if err != nil {
		return nil, err
	}

	total := netAmount + taxAmount + fee.Amount - discount - pointsValue
	if total < 0 {
		total = 0
	}

	return &models.PricedOrder{
		RestaurantID:      restaurant.ID,
		RestaurantName:    restaurant.Name,
		Currency:          s.config.Pricing.Currency,
		Lines:             lines,
		NetAmount:         netAmount,
		TaxAmount:         taxAmount,
		DeliveryFee:       fee,
		Discount:          discount,
		LoyaltyPointsUsed: pointsUsed,
		TotalPayable:      total,
	}, nil
}

func (s *OrderService) resolveCustomer(ctx context.Context, customerID string) (*models.Customer, error) {
	customer, err := s.customers.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil || customer.Status != models.CustomerStatusActive {
		return nil, apperrors.ErrCustomerNotFound.WithDetail("customer %s", customerID)
	}
	return customer, nil
}

// applyAdjustments delegates promotion and loyalty math to the loyalty
// service and returns the deductions to apply. These affect billing,
// so unlike the tariff provider they are not best-effort: an error
// fails the quote.
func (s *OrderService) applyAdjustments(
	ctx context.Context,
	req *models.QuoteRequest,
	customer *models.Customer,
	netAmount int64,
	lines []models.PricedLine,
) (discount, pointsUsed, pointsValue int64, err error) {
	if req.PromotionCode != "" {
		result, err := s.loyalty.ApplyPromotion(ctx, &clients.ApplyPromotionRequest{
			Code:        req.PromotionCode,
			CustomerID:  customer.ID,
			NetAmount:   netAmount,
			Lines:       lines,
			LoyaltyTier: customer.LoyaltyTier,
		})
		if err != nil {
			return 0, 0, 0, err
		}
		discount = result.Discount
	}

	if req.LoyaltyPointsToRedeem > 0 {
		result, err := s.loyalty.RedeemPoints(ctx, &clients.RedeemPointsRequest{
			CustomerID: customer.ID,
			Points:     req.LoyaltyPointsToRedeem,
			NetAmount:  netAmount,
		})
		if err != nil {
			return 0, 0, 0, err
		}
		pointsUsed = result.PointsUsed
		pointsValue = result.Value
	}

	return discount, pointsUsed, pointsValue, nil
}

// observe records metrics and publishes the lifecycle event. Event
// publishing is best-effort; a broker outage never fails a quote.
func (s *OrderService) observe(ctx context.Context, req *models.QuoteRequest, order *models.PricedOrder, err error, elapsed time.Duration) {
	s.metrics.QuoteDurationSecs.Observe(elapsed.Seconds())

	if err == nil {
		s.metrics.QuotesTotal.WithLabelValues(string(req.FulfillmentType)).Inc()
		if pubErr := s.publisher.PublishOrderPriced(ctx, req.CustomerID, order); pubErr != nil {
			s.logger.Error("Failed to publish order priced event", logging.Fields{
				"customer_id": req.CustomerID,
				"error":       pubErr.Error(),
			})
		}
		return
	}

	code := apperrors.CodeOf(err)
	if code == "" {
		code = "internal"
	}
	s.metrics.QuoteFailures.WithLabelValues(code).Inc()

	if apperrors.KindOf(err) == apperrors.KindBusinessRule {
		if pubErr := s.publisher.PublishQuoteFailed(ctx, req.CustomerID, code); pubErr != nil {
			s.logger.Error("Failed to publish quote failed event", logging.Fields{
				"customer_id": req.CustomerID,
				"error":       pubErr.Error(),
			})
		}
	}
}

func uniqueDishIDs(lines []models.CartLine) []string {
	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.DishID]; ok {
			continue
		}
		seen[line.DishID] = struct{}{}
		ids = append(ids, line.DishID)
	}
	return ids
}
