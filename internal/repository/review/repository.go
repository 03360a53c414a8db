package review

import (
	"context"

	"market-api/internal/domain"
)

type CreateReviewInput struct {
	UserID    string
	ProductID string
	Rating    int
	Comment   string
}

type Repository interface {
	Create(ctx context.Context, in CreateReviewInput) (*domain.Review, error)
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Review, error)
	Exists(ctx context.Context, userID, productID string) (bool, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
	DeleteByProduct(ctx context.Context, productID string) error
}
