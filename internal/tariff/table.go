// Package tariff computes delivery fees from a distance-bucketed
// internal table, letting an external delivery-partner zone price
// override it when one is available.
package tariff

import "fmt"

// bucket is one internal tariff band: distances in (lower, upper] or
// beyond the last band cost the flat fee. Fees are XOF.
type bucket struct {
	upperKm float64
	fee     int64
}

// Bands are contiguous and non-overlapping; exactly one applies to any
// distance >= 0.
var tariffTable = []bucket{
	{1, 500},
	{2, 750},
	{3, 1000},
	{5, 1500},
	{7, 2000},
	{10, 2500},
	{12.5, 2700},
	{15, 3500},
}

// beyondTableFee applies past the last band, (15, inf).
const beyondTableFee = 3500

// tableFee returns the internal fee and a human-readable band label for
// a customer-to-restaurant distance.
func tableFee(distanceKm float64, restaurantName string) (int64, string) {
	lower := 0.0
	for _, b := range tariffTable {
		if distanceKm <= b.upperKm {
			return b.fee, fmt.Sprintf("%s (%g-%g km)", restaurantName, lower, b.upperKm)
		}
		lower = b.upperKm
	}
	return beyondTableFee, fmt.Sprintf("%s (%g+ km)", restaurantName, lower)
}
