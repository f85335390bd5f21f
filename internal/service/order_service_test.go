package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koliko-eats/koliko-orders-service/internal/apperrors"
	"github.com/koliko-eats/koliko-orders-service/internal/clients"
	"github.com/koliko-eats/koliko-orders-service/internal/config"
	"github.com/koliko-eats/koliko-orders-service/internal/events"
	"github.com/koliko-eats/koliko-orders-service/internal/geo"
	"github.com/koliko-eats/koliko-orders-service/internal/matching"
	"github.com/koliko-eats/koliko-orders-service/internal/metrics"
	"github.com/koliko-eats/koliko-orders-service/internal/models"
	"github.com/koliko-eats/koliko-orders-service/internal/tariff"
)

// fakeCatalog serves a fixed set of dish snapshots.
type fakeCatalog struct {
	dishes map[string]models.DishCatalogEntry
}

func (f *fakeCatalog) GetDishes(ctx context.Context, ids []string) ([]models.DishCatalogEntry, error) {
	var out []models.DishCatalogEntry
	for _, id := range ids {
		if d, ok := f.dishes[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

// fakeDirectory serves fixed restaurants and menus.
type fakeDirectory struct {
	restaurants []models.RestaurantCandidate
	menus       map[string][]string
}

func (f *fakeDirectory) ListActiveRestaurants(ctx context.Context) ([]models.RestaurantCandidate, error) {
	out := make([]models.RestaurantCandidate, len(f.restaurants))
	copy(out, f.restaurants)
	return out, nil
}

func (f *fakeDirectory) GetRestaurant(ctx context.Context, id string) (*models.RestaurantCandidate, error) {
	for _, r := range f.restaurants {
		if r.ID == id {
			r := r
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeDirectory) CountDishesAvailableAt(ctx context.Context, restaurantID string, dishIDs []string) (int, error) {
	menu := make(map[string]struct{})
	for _, d := range f.menus[restaurantID] {
		menu[d] = struct{}{}
	}
	count := 0
	for _, d := range dishIDs {
		if _, ok := menu[d]; ok {
			count++
		}
	}
	return count, nil
}

var (
	customerAddr = geo.Point{Latitude: 5.3599, Longitude: -4.0083}
	// Monday noon; the fixture schedule covers it.
	fixedNow   = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	openAllDay = models.MustSchedule(`{"1":"08:00-22:00","2":"08:00-22:00","3":"08:00-22:00","4":"08:00-22:00","5":"08:00-22:00","6":"08:00-22:00","7":"08:00-22:00"}`)
)

type fixture struct {
	svc       *OrderService
	customers *clients.MockCustomerClient
	loyalty   *clients.MockLoyaltyClient
	publisher *events.MockPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.Config{
		Pricing: config.PricingConfig{TaxRate: 0.05, Currency: "XOF"},
	}

	catalog := &fakeCatalog{dishes: map[string]models.DishCatalogEntry{
		"burger": {ID: "burger", Name: "Burger", Price: 5000, Supplements: []models.SupplementRef{
			{ID: "cheese", UnitPrice: 300, Available: true},
		}},
		"promo-dish": {ID: "promo-dish", Price: 8000, IsPromotionActive: true, PromotionPrice: int64p(7000)},
	}}

	// One restaurant 4.2 km north of the customer.
	directory := &fakeDirectory{
		restaurants: []models.RestaurantCandidate{{
			ID:       "rest-1",
			Name:     "Chez Tante",
			Location: geo.Point{Latitude: customerAddr.Latitude + 4.2/111.0, Longitude: customerAddr.Longitude},
			Schedule: openAllDay,
		}},
		menus: map[string][]string{"rest-1": {"burger", "promo-dish"}},
	}

	customers := clients.NewMockCustomerClient()
	customers.Customers["cust-1"] = &models.Customer{
		ID: "cust-1", Status: models.CustomerStatusActive, LoyaltyTier: "gold",
	}

	loyalty := clients.NewMockLoyaltyClient()
	publisher := events.NewMockPublisher()
	reg := metrics.NewRegistry()

	svc := NewOrderService(
		catalog,
		matching.NewMatcher(directory),
		tariff.NewCalculator(nil, time.Second, reg),
		customers,
		loyalty,
		publisher,
		reg,
		cfg,
	)
	svc.now = func() time.Time { return fixedNow }

	return &fixture{svc: svc, customers: customers, loyalty: loyalty, publisher: publisher}
}

func int64p(v int64) *int64 { return &v }

func deliveryRequest() *models.QuoteRequest {
	addr := customerAddr
	return &models.QuoteRequest{
		FulfillmentType: models.FulfillmentDelivery,
		CustomerID:      "cust-1",
		Address:         &addr,
		Lines:           []models.CartLine{{DishID: "burger", Quantity: 2}},
	}
}

func TestComputePricedOrder_Delivery(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.ComputePricedOrder(context.Background(), deliveryRequest())
	require.NoError(t, err)

	// 2 x 5000 = 10000 net; 5% tax = 500, already a multiple of 10;
	// 4.2 km lands in the (3,5] fee band.
	assert.Equal(t, int64(10000), order.NetAmount)
	assert.Equal(t, int64(500), order.TaxAmount)
	assert.Equal(t, int64(1500), order.DeliveryFee.Amount)
	assert.InDelta(t, 4.2, order.DeliveryFee.DistanceKm, 0.1)
	assert.Nil(t, order.DeliveryFee.ZoneID)
	assert.Equal(t, int64(12000), order.TotalPayable)
	assert.Equal(t, "rest-1", order.RestaurantID)
	assert.Equal(t, "XOF", order.Currency)
}

func TestComputePricedOrder_PublishesPricedEvent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ComputePricedOrder(context.Background(), deliveryRequest())
	require.NoError(t, err)

	require.Len(t, f.publisher.Events, 1)
	assert.Equal(t, events.EventTypeOrderPriced, f.publisher.Events[0].Type)
	assert.Equal(t, "cust-1", f.publisher.Events[0].CustomerID)
}

func TestComputePricedOrder_PublishFailureDoesNotFailQuote(t *testing.T) {
	f := newFixture(t)
	f.publisher.Err = assert.AnError

	_, err := f.svc.ComputePricedOrder(context.Background(), deliveryRequest())
	assert.NoError(t, err)
}

func TestComputePricedOrder_PromotionPriceUsed(t *testing.T) {
	f := newFixture(t)
	req := deliveryRequest()
	req.Lines = []models.CartLine{{DishID: "promo-dish", Quantity: 1}}

	order, err := f.svc.ComputePricedOrder(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, order.Lines, 1)
	assert.Equal(t, int64(7000), order.Lines[0].UnitDishPrice)
	assert.Equal(t, int64(7000), order.NetAmount)
}

func TestComputePricedOrder_Pickup(t *testing.T) {
	f := newFixture(t)
	req := &models.QuoteRequest{
		FulfillmentType: models.FulfillmentPickup,
		CustomerID:      "cust-1",
		RestaurantID:    "rest-1",
		Lines:           []models.CartLine{{DishID: "burger", Quantity: 1}},
	}

	order, err := f.svc.ComputePricedOrder(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int64(0), order.DeliveryFee.Amount)
	assert.Equal(t, int64(5000), order.NetAmount)
	assert.Equal(t, int64(250), order.TaxAmount)
	assert.Equal(t, int64(5250), order.TotalPayable)
}

func TestComputePricedOrder_AdjustmentsApplied(t *testing.T) {
	f := newFixture(t)
	f.loyalty.Discount = 1000
	f.loyalty.PointsValue = 500

	req := deliveryRequest()
	req.PromotionCode = "WELCOME"
	req.LoyaltyPointsToRedeem = 50

	order, err := f.svc.ComputePricedOrder(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int64(1000), order.Discount)
	assert.Equal(t, int64(50), order.LoyaltyPointsUsed)
	// 10000 + 500 + 1500 - 1000 - 500
	assert.Equal(t, int64(10500), order.TotalPayable)

	require.Len(t, f.loyalty.PromotionCalls, 1)
	assert.Equal(t, "gold", f.loyalty.PromotionCalls[0].LoyaltyTier)
	require.Len(t, f.loyalty.RedeemCalls, 1)
	assert.Equal(t, int64(50), f.loyalty.RedeemCalls[0].Points)
}

func TestComputePricedOrder_TotalClampedAtZero(t *testing.T) {
	f := newFixture(t)
	f.loyalty.Discount = 100000

	req := deliveryRequest()
	req.PromotionCode = "EVERYTHING-FREE"

	order, err := f.svc.ComputePricedOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(0), order.TotalPayable)
}

func TestComputePricedOrder_AdjustmentErrorFailsQuote(t *testing.T) {
	f := newFixture(t)
	f.loyalty.PromotionErr = assert.AnError

	req := deliveryRequest()
	req.PromotionCode = "BROKEN"

	_, err := f.svc.ComputePricedOrder(context.Background(), req)
	assert.Error(t, err)
}

func TestComputePricedOrder_Idempotent(t *testing.T) {
	f := newFixture(t)

	first, err := f.svc.ComputePricedOrder(context.Background(), deliveryRequest())
	require.NoError(t, err)
	second, err := f.svc.ComputePricedOrder(context.Background(), deliveryRequest())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComputePricedOrder_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *fixture, req *models.QuoteRequest)
		wantErr error
	}{
		{
			name: "missing address",
			mutate: func(f *fixture, req *models.QuoteRequest) {
				req.Address = nil
			},
			wantErr: apperrors.ErrInvalidAddress,
		},
		{
			name: "out of range address",
			mutate: func(f *fixture, req *models.QuoteRequest) {
				req.Address = &geo.Point{Latitude: 120, Longitude: 0}
			},
			wantErr: apperrors.ErrInvalidAddress,
		},
		{
			name: "empty cart",
			mutate: func(f *fixture, req *models.QuoteRequest) {
				req.Lines = nil
			},
			wantErr: apperrors.ErrEmptyCart,
		},
		{
			name: "unknown customer",
			mutate: func(f *fixture, req *models.QuoteRequest) {
				req.CustomerID = "ghost"
			},
			wantErr: apperrors.ErrCustomerNotFound,
		},
		{
			name: "soft deleted customer",
			mutate: func(f *fixture, req *models.QuoteRequest) {
				f.customers.Customers["cust-1"].Status = models.CustomerStatusDeleted
			},
			wantErr: apperrors.ErrCustomerNotFound,
		},
		{
			name: "dish gone from catalog",
			mutate: func(f *fixture, req *models.QuoteRequest) {
				req.Lines = []models.CartLine{{DishID: "retired-dish", Quantity: 1}}
			},
			wantErr: apperrors.ErrDishNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := deliveryRequest()
			tt.mutate(f, req)

			_, err := f.svc.ComputePricedOrder(context.Background(), req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.publisher.Events, "rejected quotes must not publish priced events")
		})
	}
}

func TestComputePricedOrder_BusinessRuleFailurePublishesEvent(t *testing.T) {
	f := newFixture(t)
	// Evaluate at 23:00: the fixture restaurant closes at 22:00.
	f.svc.now = func() time.Time {
		return time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)
	}

	_, err := f.svc.ComputePricedOrder(context.Background(), deliveryRequest())
	require.ErrorIs(t, err, apperrors.ErrNoEligibleRestaurant)

	require.Len(t, f.publisher.Events, 1)
	assert.Equal(t, events.EventTypeQuoteFailed, f.publisher.Events[0].Type)
}
