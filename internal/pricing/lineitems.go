// Package pricing resolves cart lines against a catalog snapshot and
// computes order-level tax.
package pricing

import (
	"github.com/koliko-eats/koliko-orders-service/internal/apperrors"
	"github.com/koliko-eats/koliko-orders-service/internal/models"
)

// PriceLines resolves every cart line to a priced line and returns the
// net order amount. The catalog must have been fetched for exactly the
// requested dish IDs; a missing entry means the dish no longer exists
// or is inactive.
func PriceLines(lines []models.CartLine, catalog []models.DishCatalogEntry) ([]models.PricedLine, int64, error) {
	if len(lines) == 0 {
		return nil, 0, apperrors.ErrEmptyCart
	}

	byID := make(map[string]models.DishCatalogEntry, len(catalog))
	for _, entry := range catalog {
		byID[entry.ID] = entry
	}

	priced := make([]models.PricedLine, 0, len(lines))
	var netAmount int64

	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, 0, apperrors.NewValidationError("quantity", "must be at least 1")
		}

		dish, ok := byID[line.DishID]
		if !ok {
			return nil, 0, apperrors.ErrDishNotFound.WithDetail("dish %s", line.DishID)
		}

		unitPrice := dish.EffectiveUnitPrice()

		supplementsTotal, err := priceSupplements(line, dish)
		if err != nil {
			return nil, 0, err
		}

		lineTotal := unitPrice*int64(line.Quantity) + supplementsTotal
		priced = append(priced, models.PricedLine{
			DishID:           line.DishID,
			Quantity:         line.Quantity,
			UnitDishPrice:    unitPrice,
			SupplementsTotal: supplementsTotal,
			LineTotal:        lineTotal,
		})
		netAmount += lineTotal
	}

	return priced, netAmount, nil
}

func priceSupplements(line models.CartLine, dish models.DishCatalogEntry) (int64, error) {
	var total int64
	for _, sel := range line.Supplements {
		if sel.Quantity < 1 {
			return 0, apperrors.NewValidationError("supplements", "quantity must be at least 1")
		}

		ref, ok := dish.Supplement(sel.ID)
		if !ok || !ref.Available {
			return 0, apperrors.ErrInvalidSupplement.WithDetail("supplement %s on dish %s", sel.ID, dish.ID)
		}

		total += ref.UnitPrice * int64(sel.Quantity)
	}
	return total, nil
}
