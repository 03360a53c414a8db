// Package wishlist manages per-user product wishlists.
package wishlist

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"market-api/internal/domain"
)

type wishlistRepo interface {
	Add(ctx context.Context, userID, productID string) (*domain.WishlistItem, error)
	ListByUser(ctx context.Context, userID string) ([]domain.WishlistItem, error)
	Delete(ctx context.Context, userID, productID string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type Service struct {
	wishlistRepo wishlistRepo
	productRepo  productRepo
	logger       *log.Logger
}

func New(wishlists wishlistRepo, products productRepo, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{wishlistRepo: wishlists, productRepo: products, logger: logger}
}

// Add puts a product on the wishlist. A second add for the same product
// returns domain.ErrAlreadyExists.
func (s *Service) Add(ctx context.Context, userID, productID string) (*domain.WishlistItem, error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.wishlistRepo.Add(ctx, userID, productID)
}

// Entry is a wishlist item with live product data attached.
type Entry struct {
	ID      string         `json:"id"`
	Product domain.Product `json:"product"`
	AddedAt time.Time      `json:"addedAt"`
}

// List returns the user's wishlist. Entries whose product was deleted are
// dropped from the view.
func (s *Service) List(ctx context.Context, userID string) ([]Entry, error) {
	items, err := s.wishlistRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		entries = append(entries, Entry{ID: item.ID, Product: *product, AddedAt: item.AddedAt})
	}
	return entries, nil
}

func (s *Service) Remove(ctx context.Context, userID, productID string) error {
	return s.wishlistRepo.Delete(ctx, userID, productID)
}
