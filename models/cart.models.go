package models

// CartItem represents an item in the cart
type CartItem struct {
	Coffee   Coffee `bson:"coffee" json:"coffee"`
	Quantity int    `bson:"quantity" json:"quantity"`
}

// CartTotal sums the effective price of every entry times its quantity.
func CartTotal(items []CartItem) float64 {
	total := 0.0
	for _, item := range items {
		total += item.Coffee.EffectivePrice() * float64(item.Quantity)
	}
	return total
}
