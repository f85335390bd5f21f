package models

// SupplementRef is a supplement offered by a dish, with its unit price.
type SupplementRef struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Category  string `json:"category"`
	Available bool   `json:"available"`
}

// DishCatalogEntry is an immutable catalog snapshot of one dish, taken
// at quote time. Later catalog changes never alter a priced order.
type DishCatalogEntry struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Price             int64           `json:"price"`
	IsPromotionActive bool            `json:"is_promotion_active"`
	PromotionPrice    *int64          `json:"promotion_price,omitempty"`
	Supplements       []SupplementRef `json:"supplements"`
}

// EffectiveUnitPrice returns the promotion price when a promotion is
// active and carries a price, otherwise the regular price.
func (d DishCatalogEntry) EffectiveUnitPrice() int64 {
	if d.IsPromotionActive && d.PromotionPrice != nil {
		return *d.PromotionPrice
	}
	return d.Price
}

// Supplement looks up an offered supplement by ID.
func (d DishCatalogEntry) Supplement(id string) (SupplementRef, bool) {
	for _, s := range d.Supplements {
		if s.ID == id {
			return s, true
		}
	}
	return SupplementRef{}, false
}
