package order

import (
	"context"
	"time"

	"market-api/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateOrderInput struct {
	UserID   string
	Total    decimal.Decimal
	Currency string
	Items    []CreateItemInput
}

type CreateItemInput struct {
	ProductID string
	Quantity  int
	// Price is the product price at snapshot time, never re-read later.
	Price decimal.Decimal
}

type ListAdminInput struct {
	Status string
	Limit  int
	Offset int
}

type Repository interface {
	// CreateWithItems persists the order and all of its items atomically: a
	// partial failure leaves no order behind.
	CreateWithItems(ctx context.Context, in CreateOrderInput) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetOwned(ctx context.Context, userID, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListAdmin(ctx context.Context, in ListAdminInput) ([]domain.Order, int, error)
	ItemsByOrder(ctx context.Context, orderID string) ([]domain.OrderItem, error)

	// SetPaymentIntent stores the provider invoice exactly once. A second call
	// for the same order returns domain.ErrDuplicatePaymentIntent.
	SetPaymentIntent(ctx context.Context, orderID, paymentID, paymentURL string) error
	// SetStatus overwrites the order status unconditionally (last write wins).
	// When completedAt is non-nil it is applied only if not already set, so
	// replayed completion events keep the original timestamp.
	SetStatus(ctx context.Context, orderID string, status domain.OrderStatus, completedAt *time.Time) error
	FakeComplete(ctx context.Context, orderID, paymentID string, completedAt time.Time) (*domain.Order, error)

	// HasCompletedWithProduct reports whether the user has a completed order
	// containing the product (review eligibility).
	HasCompletedWithProduct(ctx context.Context, userID, productID string) (bool, error)

	// RemoveItemsForProduct deletes order items referencing the product and
	// returns the ids of affected orders. Deleting already-deleted items is a
	// no-op.
	RemoveItemsForProduct(ctx context.Context, productID string) ([]string, error)
	// DeleteIfEmpty removes the order when it has no items left.
	DeleteIfEmpty(ctx context.Context, orderID string) (bool, error)
	// AnonymizeUser re-owns all of a user's orders to the deleted-user
	// sentinel instead of deleting history.
	AnonymizeUser(ctx context.Context, userID string) error
}
