package product

import (
	"context"

	"market-api/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Category    string
	PhotoURLs   []string
	Specs       []SpecInput
}

type SpecInput struct {
	Name  string
	Value string
}

// UpdateProductInput carries optional fields; nil means "leave unchanged".
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	ImageURL    *string
	Category    *string
}

type Repository interface {
	Create(ctx context.Context, in CreateProductInput) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, category string) ([]domain.Product, error)
	Update(ctx context.Context, id string, in UpdateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	DeletePhotos(ctx context.Context, productID string) error
	DeleteSpecs(ctx context.Context, productID string) error
	Count(ctx context.Context) (int, error)
}
