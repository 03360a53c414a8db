// Package review implements product reviews with purchase-based eligibility.
package review

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"market-api/internal/domain"
	reviewrepo "market-api/internal/repository/review"
)

type reviewRepo interface {
	Create(ctx context.Context, in reviewrepo.CreateReviewInput) (*domain.Review, error)
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)
	Exists(ctx context.Context, userID, productID string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type orderRepo interface {
	HasCompletedWithProduct(ctx context.Context, userID, productID string) (bool, error)
}

type Service struct {
	reviewRepo  reviewRepo
	productRepo productRepo
	orderRepo   orderRepo
	logger      *log.Logger
}

func New(reviews reviewRepo, products productRepo, orders orderRepo, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{reviewRepo: reviews, productRepo: products, orderRepo: orders, logger: logger}
}

// Add creates a review. The reviewer must have a completed order containing
// the product, and only one review per product is allowed.
func (s *Service) Add(ctx context.Context, userID, productID string, rating int, comment string) (*domain.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrInvalid)
	}
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	purchased, err := s.orderRepo.HasCompletedWithProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if !purchased {
		return nil, domain.ErrForbidden
	}

	if exists, err := s.reviewRepo.Exists(ctx, userID, productID); err != nil {
		return nil, err
	} else if exists {
		return nil, domain.ErrAlreadyExists
	}

	return s.reviewRepo.Create(ctx, reviewrepo.CreateReviewInput{
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	})
}

func (s *Service) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	return s.reviewRepo.ListByProduct(ctx, productID)
}

// CanReview reports whether the user is eligible to review the product.
func (s *Service) CanReview(ctx context.Context, userID, productID string) (bool, error) {
	purchased, err := s.orderRepo.HasCompletedWithProduct(ctx, userID, productID)
	if err != nil || !purchased {
		return false, err
	}
	exists, err := s.reviewRepo.Exists(ctx, userID, productID)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// Delete removes a review. Only its author or an admin may delete it.
func (s *Service) Delete(ctx context.Context, callerID, callerRole, reviewID string) error {
	rev, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if rev.UserID != callerID && callerRole != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return s.reviewRepo.Delete(ctx, reviewID)
}
