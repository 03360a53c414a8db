// Package delivery manages shipment records attached to orders.
package delivery

import (
	"context"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"

	"market-api/internal/domain"
	deliveryrepo "market-api/internal/repository/delivery"
)

// trackingNumberRe matches the carrier's tracking number format.
var trackingNumberRe = regexp.MustCompile(`^\d{14}$`)

type deliveryRepo interface {
	Create(ctx context.Context, in deliveryrepo.CreateDeliveryInput) (*domain.Delivery, error)
	GetByID(ctx context.Context, id string) (*domain.Delivery, error)
	GetByOrder(ctx context.Context, orderID string) (*domain.Delivery, error)
	GetByTracking(ctx context.Context, trackingNumber string) (*domain.Delivery, error)
	Update(ctx context.Context, id string, in deliveryrepo.UpdateDeliveryInput) (*domain.Delivery, error)
	SetTracking(ctx context.Context, id, trackingNumber string) error
	SetStatus(ctx context.Context, id, status string) error
}

type orderRepo interface {
	GetOwned(ctx context.Context, userID, id string) (*domain.Order, error)
}

type Service struct {
	deliveryRepo deliveryRepo
	orderRepo    orderRepo
	logger       *log.Logger
}

func New(deliveries deliveryRepo, orders orderRepo, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{deliveryRepo: deliveries, orderRepo: orders, logger: logger}
}

// Create attaches a delivery to the caller's order. An order can have one
// delivery; a second create returns domain.ErrAlreadyExists.
func (s *Service) Create(ctx context.Context, userID string, in deliveryrepo.CreateDeliveryInput) (*domain.Delivery, error) {
	if strings.TrimSpace(in.RecipientFullName) == "" {
		return nil, fmt.Errorf("%w: recipient full name required", domain.ErrInvalid)
	}
	if strings.TrimSpace(in.RecipientPhone) == "" {
		return nil, fmt.Errorf("%w: recipient phone required", domain.ErrInvalid)
	}
	if _, err := s.orderRepo.GetOwned(ctx, userID, in.OrderID); err != nil {
		return nil, err
	}
	return s.deliveryRepo.Create(ctx, in)
}

// GetForOrder returns the delivery of the caller's order.
func (s *Service) GetForOrder(ctx context.Context, userID, orderID string) (*domain.Delivery, error) {
	if _, err := s.orderRepo.GetOwned(ctx, userID, orderID); err != nil {
		return nil, err
	}
	return s.deliveryRepo.GetByOrder(ctx, orderID)
}

// Track looks a delivery up by tracking number. No ownership check.
func (s *Service) Track(ctx context.Context, trackingNumber string) (*domain.Delivery, error) {
	if !trackingNumberRe.MatchString(trackingNumber) {
		return nil, fmt.Errorf("%w: tracking number must be exactly 14 digits", domain.ErrInvalid)
	}
	return s.deliveryRepo.GetByTracking(ctx, trackingNumber)
}

// Update edits recipient fields on the delivery of the caller's order.
func (s *Service) Update(ctx context.Context, userID, orderID string, in deliveryrepo.UpdateDeliveryInput) (*domain.Delivery, error) {
	if _, err := s.orderRepo.GetOwned(ctx, userID, orderID); err != nil {
		return nil, err
	}
	current, err := s.deliveryRepo.GetByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.deliveryRepo.Update(ctx, current.ID, in)
}

// SetTracking records the carrier tracking number on a delivery. Admin.
func (s *Service) SetTracking(ctx context.Context, deliveryID, trackingNumber string) error {
	if !trackingNumberRe.MatchString(trackingNumber) {
		return fmt.Errorf("%w: tracking number must be exactly 14 digits", domain.ErrInvalid)
	}
	if _, err := s.deliveryRepo.GetByID(ctx, deliveryID); err != nil {
		return err
	}
	if err := s.deliveryRepo.SetTracking(ctx, deliveryID, trackingNumber); err != nil {
		return err
	}
	s.logger.Printf("delivery: %s got tracking number %s", deliveryID, trackingNumber)
	return nil
}

// SetStatus updates the shipment status. Admin.
func (s *Service) SetStatus(ctx context.Context, deliveryID, status string) error {
	status = strings.TrimSpace(status)
	if status == "" {
		return fmt.Errorf("%w: status required", domain.ErrInvalid)
	}
	if _, err := s.deliveryRepo.GetByID(ctx, deliveryID); err != nil {
		return err
	}
	return s.deliveryRepo.SetStatus(ctx, deliveryID, status)
}
