package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Price       decimal.Decimal        `json:"price"`
	ImageURL    string                 `json:"imageUrl,omitempty"`
	Category    string                 `json:"category,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
	UpdatedAt   *time.Time             `json:"updatedAt,omitempty"`
	Photos      []ProductPhoto         `json:"photos,omitempty"`
	Specs       []ProductSpecification `json:"specifications,omitempty"`
}

type ProductPhoto struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	URL       string `json:"url"`
	Position  int    `json:"position"`
}

type ProductSpecification struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Value     string `json:"value"`
}
