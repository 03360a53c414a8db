package domain

import "time"

// CartItem is a transient line in a user's cart. At most one row exists per
// (user, product) pair; adding the same product again increments quantity.
type CartItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}
