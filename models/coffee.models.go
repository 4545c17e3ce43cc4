package models

// Coffee represents a catalog entry. Coffees are sourced from the remote
// store and never mutated by ordering clients.
type Coffee struct {
	ID              string   `bson:"_id" json:"id"`
	Name            string   `bson:"name" json:"name"`
	Category        string   `bson:"category" json:"category"`
	Price           float64  `bson:"price" json:"price"`
	PriceAfterPromo *float64 `bson:"price_after_promo,omitempty" json:"price_after_promo,omitempty"`
	ImageRes        string   `bson:"image_res" json:"image_res"`
	Description     string   `bson:"description" json:"description"`
	CreatedAt       string   `bson:"created_at" json:"created_at"`
}

// EffectivePrice returns the promo price when one is set, the regular price
// otherwise.
func (c Coffee) EffectivePrice() float64 {
	if c.PriceAfterPromo != nil {
		return *c.PriceAfterPromo
	}
	return c.Price
}
