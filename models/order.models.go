package models

import (
	"time"
)

// OrderStatusPending is the status every freshly placed order starts in.
const OrderStatusPending = "Pending"

// Order represents a user's order. The id is generated client-side at
// checkout; the document is never mutated after it is written.
type Order struct {
	ID            string     `bson:"_id" json:"id"`
	UserID        string     `bson:"user_id" json:"user_id"`
	Items         []CartItem `bson:"items" json:"items"`
	TotalPrice    float64    `bson:"total_price" json:"total_price"`
	Address       string     `bson:"address" json:"address"`
	PaymentMethod string     `bson:"payment_method" json:"payment_method"`
	Status        string     `bson:"status" json:"status"` // e.g. "Pending", "Delivered"
	CreatedAt     time.Time  `bson:"created_at" json:"created_at"`
}
