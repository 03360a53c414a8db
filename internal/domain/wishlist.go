package domain

import "time"

type WishlistItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	ProductID string    `json:"productId"`
	AddedAt   time.Time `json:"addedAt"`
}
