package pricing

import "math"

// Tax applies the configured rate to the net amount and rounds the
// result up to the nearest multiple of 10, keeping amounts in the round
// denominations the market uses.
//
// Computation errors (non-finite or negative intermediate values) fail
// open to zero tax so a tax bug never blocks order placement; ok=false
// reports the fail-open so callers can log and count it.
func Tax(netAmount int64, rate float64) (amount int64, ok bool) {
	raw := float64(netAmount) * rate
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw < 0 {
		return 0, false
	}

	rounded := math.Ceil(raw/10) * 10
	if rounded > math.MaxInt64 {
		return 0, false
	}

	return int64(rounded), true
}
