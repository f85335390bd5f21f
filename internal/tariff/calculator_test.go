package tariff

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/koliko-eats/koliko-orders-service/internal/apperrors"
	"github.com/koliko-eats/koliko-orders-service/internal/geo"
	"github.com/koliko-eats/koliko-orders-service/internal/metrics"
	"github.com/koliko-eats/koliko-orders-service/internal/models"
)

type stubZoneProvider struct {
	zones []Zone
	err   error
	delay time.Duration
	calls int
}

func (s *stubZoneProvider) GetZones(ctx context.Context, apiKey string, offset, limit int) ([]Zone, error) {
	s.calls++
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.zones, s.err
}

// pointAtKm returns a point roughly km kilometers north of origin.
func pointAtKm(origin geo.Point, km float64) geo.Point {
	return geo.Point{Latitude: origin.Latitude + km/111.0, Longitude: origin.Longitude}
}

var testOrigin = geo.Point{Latitude: 5.3599, Longitude: -4.0083}

func testRestaurant(km float64, apiKey string) *models.RestaurantCandidate {
	return &models.RestaurantCandidate{
		ID:           "rest-1",
		Name:         "Chez Tante",
		Location:     pointAtKm(testOrigin, km),
		TariffAPIKey: apiKey,
	}
}

func TestTableBucketsAreContiguous(t *testing.T) {
	// Every distance maps to exactly one band and fees never decrease.
	var prevFee int64
	for d := 0.0; d <= 40; d += 0.05 {
		fee, label := tableFee(d, "R")
		if fee <= 0 {
			t.Fatalf("no fee for distance %f", d)
		}
		if fee < prevFee {
			t.Errorf("fee decreased at %f: %d < %d", d, fee, prevFee)
		}
		if label == "" {
			t.Errorf("empty label at %f", d)
		}
		prevFee = fee
	}
}

func TestTableFee_BandEdges(t *testing.T) {
	tests := []struct {
		distance float64
		want     int64
	}{
		{0, 500},
		{1, 500},
		{1.01, 750},
		{2, 750},
		{3, 1000},
		{4.2, 1500},
		{5, 1500},
		{7, 2000},
		{10, 2500},
		{12.5, 2700},
		{15, 3500},
		{15.01, 3500},
		{100, 3500},
	}

	for _, tt := range tests {
		fee, _ := tableFee(tt.distance, "R")
		if fee != tt.want {
			t.Errorf("tableFee(%g) = %d, want %d", tt.distance, fee, tt.want)
		}
	}
}

func TestFee_InternalTableWhenNoProvider(t *testing.T) {
	c := NewCalculator(nil, time.Second, metrics.NewRegistry())

	// Customer 4.2 km away lands in the (3,5] band.
	fee, err := c.Fee(context.Background(), testOrigin, testRestaurant(4.2, ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fee.Amount != 1500 {
		t.Errorf("fee = %d, want 1500", fee.Amount)
	}
	if fee.ZoneID != nil {
		t.Error("internal table fee must not carry a zone ID")
	}
	if math.Abs(fee.DistanceKm-4.2) > 0.1 {
		t.Errorf("distance = %f, want ~4.2", fee.DistanceKm)
	}
}

func TestFee_ProviderZoneOverrides(t *testing.T) {
	provider := &stubZoneProvider{zones: []Zone{
		{ID: "z2", Name: "Cocody Nord", Location: pointAtKm(testOrigin, 8), Price: 1200},
		{ID: "z1", Name: "Plateau Centre", Location: pointAtKm(testOrigin, 0.2), Price: 900},
	}}
	c := NewCalculator(provider, time.Second, metrics.NewRegistry())

	fee, err := c.Fee(context.Background(), testOrigin, testRestaurant(4.2, "partner-key"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fee.Amount != 900 {
		t.Errorf("fee = %d, want nearest zone price 900", fee.Amount)
	}
	if fee.ZoneID == nil || *fee.ZoneID != "z1" {
		t.Errorf("zone ID = %v, want z1", fee.ZoneID)
	}
	if fee.ZoneLabel != "Plateau Centre" {
		t.Errorf("zone label = %q", fee.ZoneLabel)
	}
	// Distance still reflects the restaurant, not the zone.
	if math.Abs(fee.DistanceKm-4.2) > 0.1 {
		t.Errorf("distance = %f, want ~4.2", fee.DistanceKm)
	}
}

func TestFee_ProviderErrorFallsBack(t *testing.T) {
	provider := &stubZoneProvider{err: errors.New("boom")}
	c := NewCalculator(provider, time.Second, metrics.NewRegistry())

	fee, err := c.Fee(context.Background(), testOrigin, testRestaurant(4.2, "partner-key"))
	if err != nil {
		t.Fatalf("provider failure must not fail the calculation: %v", err)
	}
	if fee.Amount != 1500 || fee.ZoneID != nil {
		t.Errorf("expected internal table fallback, got %+v", fee)
	}
}

func TestFee_ProviderTimeoutFallsBack(t *testing.T) {
	provider := &stubZoneProvider{
		zones: []Zone{{ID: "z1", Price: 100, Location: testOrigin}},
		delay: 200 * time.Millisecond,
	}
	c := NewCalculator(provider, 10*time.Millisecond, metrics.NewRegistry())

	start := time.Now()
	fee, err := c.Fee(context.Background(), testOrigin, testRestaurant(4.2, "partner-key"))
	if err != nil {
		t.Fatalf("timeout must not fail the calculation: %v", err)
	}
	if fee.Amount != 1500 {
		t.Errorf("expected internal fallback fee 1500, got %d", fee.Amount)
	}
	if time.Since(start) > 150*time.Millisecond {
		t.Error("calculator waited past its provider timeout")
	}
}

func TestFee_EmptyZoneListFallsBack(t *testing.T) {
	provider := &stubZoneProvider{zones: nil}
	c := NewCalculator(provider, time.Second, metrics.NewRegistry())

	fee, err := c.Fee(context.Background(), testOrigin, testRestaurant(0.5, "partner-key"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fee.Amount != 500 || fee.ZoneID != nil {
		t.Errorf("expected internal table fallback, got %+v", fee)
	}
}

func TestFee_NoProviderCallWithoutAPIKey(t *testing.T) {
	provider := &stubZoneProvider{zones: []Zone{{ID: "z1", Price: 100}}}
	c := NewCalculator(provider, time.Second, metrics.NewRegistry())

	if _, err := c.Fee(context.Background(), testOrigin, testRestaurant(1.5, "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.calls != 0 {
		t.Errorf("provider called %d times for a restaurant without a key", provider.calls)
	}
}

func TestFee_MissingRestaurant(t *testing.T) {
	c := NewCalculator(nil, time.Second, metrics.NewRegistry())

	_, err := c.Fee(context.Background(), testOrigin, nil)
	if !errors.Is(err, apperrors.ErrRestaurantNotFound) {
		t.Errorf("error = %v, want ErrRestaurantNotFound", err)
	}
}
