// Package product manages the catalog and performs the cross-entity cleanup
// that follows a product deletion.
package product

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"market-api/internal/domain"
	productrepo "market-api/internal/repository/product"
	"github.com/shopspring/decimal"
)

type productRepo interface {
	Create(ctx context.Context, in productrepo.CreateProductInput) (*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, category string) ([]domain.Product, error)
	Update(ctx context.Context, id string, in productrepo.UpdateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	DeletePhotos(ctx context.Context, productID string) error
	DeleteSpecs(ctx context.Context, productID string) error
}

type orderRepo interface {
	RemoveItemsForProduct(ctx context.Context, productID string) ([]string, error)
	DeleteIfEmpty(ctx context.Context, orderID string) (bool, error)
}

type cartRepo interface {
	DeleteByProduct(ctx context.Context, productID string) error
}

type wishlistRepo interface {
	DeleteByProduct(ctx context.Context, productID string) error
}

type reviewRepo interface {
	DeleteByProduct(ctx context.Context, productID string) error
}

type Service struct {
	productRepo  productRepo
	orderRepo    orderRepo
	cartRepo     cartRepo
	wishlistRepo wishlistRepo
	reviewRepo   reviewRepo
	logger       *log.Logger
}

func New(products productRepo, orders orderRepo, carts cartRepo, wishlists wishlistRepo, reviews reviewRepo, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		productRepo:  products,
		orderRepo:    orders,
		cartRepo:     carts,
		wishlistRepo: wishlists,
		reviewRepo:   reviews,
		logger:       logger,
	}
}

func (s *Service) Create(ctx context.Context, in productrepo.CreateProductInput) (*domain.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, fmt.Errorf("%w: product name required", domain.ErrInvalid)
	}
	if in.Price.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: price must be positive", domain.ErrInvalid)
	}
	return s.productRepo.Create(ctx, in)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, category string) ([]domain.Product, error) {
	return s.productRepo.List(ctx, category)
}

func (s *Service) Update(ctx context.Context, id string, in productrepo.UpdateProductInput) (*domain.Product, error) {
	if in.Price != nil && in.Price.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: price must be positive", domain.ErrInvalid)
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, fmt.Errorf("%w: product name required", domain.ErrInvalid)
	}
	return s.productRepo.Update(ctx, id, in)
}

// Delete removes a product and everything that references it. Order items
// for the product are removed and orders left empty are deleted; orders that
// keep other items keep their original total. Completed order history is
// affected the same way as pending history, which is accepted: the snapshot
// price lives on the removed item rows, not the order row.
//
// Each step is idempotent, so a partial failure can be retried by calling
// Delete again.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.productRepo.GetByID(ctx, id); err != nil {
		return err
	}

	orderIDs, err := s.orderRepo.RemoveItemsForProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("remove order items: %w", err)
	}
	for _, orderID := range orderIDs {
		deleted, err := s.orderRepo.DeleteIfEmpty(ctx, orderID)
		if err != nil {
			return fmt.Errorf("delete emptied order %s: %w", orderID, err)
		}
		if deleted {
			s.logger.Printf("product: deleted order %s emptied by removal of product %s", orderID, id)
		}
	}

	if err := s.cartRepo.DeleteByProduct(ctx, id); err != nil {
		return fmt.Errorf("clear cart lines: %w", err)
	}
	if err := s.wishlistRepo.DeleteByProduct(ctx, id); err != nil {
		return fmt.Errorf("clear wishlist entries: %w", err)
	}
	if err := s.reviewRepo.DeleteByProduct(ctx, id); err != nil {
		return fmt.Errorf("clear reviews: %w", err)
	}
	if err := s.productRepo.DeletePhotos(ctx, id); err != nil {
		return fmt.Errorf("clear photos: %w", err)
	}
	if err := s.productRepo.DeleteSpecs(ctx, id); err != nil {
		return fmt.Errorf("clear specifications: %w", err)
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Printf("product: deleted %s with cascade", id)
	return nil
}
