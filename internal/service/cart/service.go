// Package cart manages the per-user shopping cart.
package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"market-api/internal/domain"
	"github.com/shopspring/decimal"
)

type cartRepo interface {
	ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error)
	GetByID(ctx context.Context, userID, id string) (*domain.CartItem, error)
	Upsert(ctx context.Context, userID, productID string, quantity int) (*domain.CartItem, error)
	SetQuantity(ctx context.Context, userID, id string, quantity int) (*domain.CartItem, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteByUser(ctx context.Context, userID string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type Service struct {
	cartRepo    cartRepo
	productRepo productRepo
	logger      *log.Logger
}

func New(carts cartRepo, products productRepo, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{cartRepo: carts, productRepo: products, logger: logger}
}

// Line is a cart item joined with current product data.
type Line struct {
	ID       string          `json:"id"`
	Product  domain.Product  `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// View is the full cart as the client sees it.
type View struct {
	Items []Line          `json:"items"`
	Total decimal.Decimal `json:"total"`
}

// Get returns the user's cart with live product data. Lines whose product
// was deleted are omitted from the view but left in storage; checkout
// applies the same skip.
func (s *Service) Get(ctx context.Context, userID string) (*View, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &View{Items: []Line{}, Total: decimal.Zero}
	for _, item := range items {
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Printf("cart: hiding line %s, product %s is gone", item.ID, item.ProductID)
				continue
			}
			return nil, err
		}
		subtotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		view.Items = append(view.Items, Line{
			ID:       item.ID,
			Product:  *product,
			Quantity: item.Quantity,
			Subtotal: subtotal,
		})
		view.Total = view.Total.Add(subtotal)
	}
	return view, nil
}

// Add puts a product in the cart. Adding a product that is already in the
// cart increments the existing line's quantity.
func (s *Service) Add(ctx context.Context, userID, productID string, quantity int) (*domain.CartItem, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalid)
	}
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
		}
		return nil, err
	}
	return s.cartRepo.Upsert(ctx, userID, productID, quantity)
}

// UpdateItem replaces a line's quantity.
func (s *Service) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*domain.CartItem, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalid)
	}
	return s.cartRepo.SetQuantity(ctx, userID, itemID, quantity)
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) error {
	return s.cartRepo.Delete(ctx, userID, itemID)
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.cartRepo.DeleteByUser(ctx, userID)
}
