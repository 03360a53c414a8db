package cart

import (
	"context"

	"market-api/internal/domain"
)

type Repository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error)
	GetByID(ctx context.Context, userID, id string) (*domain.CartItem, error)
	// Upsert inserts a cart line or, when one already exists for the
	// (user, product) pair, increments its quantity. The unique index on
	// (user_id, product_id) makes this safe under concurrent adds.
	Upsert(ctx context.Context, userID, productID string, quantity int) (*domain.CartItem, error)
	SetQuantity(ctx context.Context, userID, id string, quantity int) (*domain.CartItem, error)
	Delete(ctx context.Context, userID, id string) error
	// DeleteByIDs removes only the given lines for the user. Lines added after
	// a checkout snapshot was read are left alone.
	DeleteByIDs(ctx context.Context, userID string, ids []string) error
	DeleteByUser(ctx context.Context, userID string) error
	DeleteByProduct(ctx context.Context, productID string) error
}
