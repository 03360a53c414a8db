package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Delivery tracks shipment details for a single order. One per order.
type Delivery struct {
	ID                string          `json:"id"`
	OrderID           string          `json:"orderId"`
	Method            string          `json:"deliveryMethod"`
	Type              string          `json:"deliveryType"`
	RecipientFullName string          `json:"recipientFullName"`
	RecipientPhone    string          `json:"recipientPhone"`
	CityRef           string          `json:"cityRef,omitempty"`
	CityName          string          `json:"cityName,omitempty"`
	WarehouseRef      string          `json:"warehouseRef,omitempty"`
	WarehouseAddress  string          `json:"warehouseAddress,omitempty"`
	Address           string          `json:"deliveryAddress,omitempty"`
	Cost              decimal.Decimal `json:"deliveryCost"`
	Status            string          `json:"deliveryStatus"`
	TrackingNumber    string          `json:"trackingNumber,omitempty"`
	Data              map[string]any  `json:"additionalData,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         *time.Time      `json:"updatedAt,omitempty"`
}
