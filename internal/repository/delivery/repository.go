package delivery

import (
	"context"

	"market-api/internal/domain"
	"github.com/shopspring/decimal"
)

type CreateDeliveryInput struct {
	OrderID           string
	Method            string
	Type              string
	RecipientFullName string
	RecipientPhone    string
	CityRef           string
	CityName          string
	WarehouseRef      string
	WarehouseAddress  string
	Address           string
	Cost              decimal.Decimal
	Data              map[string]any
}

// UpdateDeliveryInput carries optional fields; nil means "leave unchanged".
type UpdateDeliveryInput struct {
	RecipientFullName *string
	RecipientPhone    *string
	CityRef           *string
	CityName          *string
	WarehouseRef      *string
	WarehouseAddress  *string
	Address           *string
}

type Repository interface {
	Create(ctx context.Context, in CreateDeliveryInput) (*domain.Delivery, error)
	GetByID(ctx context.Context, id string) (*domain.Delivery, error)
	GetByOrder(ctx context.Context, orderID string) (*domain.Delivery, error)
	GetByTracking(ctx context.Context, trackingNumber string) (*domain.Delivery, error)
	Update(ctx context.Context, id string, in UpdateDeliveryInput) (*domain.Delivery, error)
	SetTracking(ctx context.Context, id, trackingNumber string) error
	SetStatus(ctx context.Context, id, status string) error
}
