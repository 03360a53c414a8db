package wishlist

import (
	"context"

	"market-api/internal/domain"
)

type Repository interface {
	Add(ctx context.Context, userID, productID string) (*domain.WishlistItem, error)
	ListByUser(ctx context.Context, userID string) ([]domain.WishlistItem, error)
	Delete(ctx context.Context, userID, productID string) error
	DeleteByUser(ctx context.Context, userID string) error
	DeleteByProduct(ctx context.Context, productID string) error
}
