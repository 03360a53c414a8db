package cart

import (
	"context"
	"errors"
	"testing"

	"market-api/internal/domain"
	"github.com/shopspring/decimal"
)

type stubCartRepo struct {
	items       []domain.CartItem
	upserts     int
	lastQty     int
	deleted     []string
	clearedUser string
}

func (s *stubCartRepo) ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error) {
	return s.items, nil
}

func (s *stubCartRepo) GetByID(ctx context.Context, userID, id string) (*domain.CartItem, error) {
	for i := range s.items {
		if s.items[i].ID == id {
			return &s.items[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubCartRepo) Upsert(ctx context.Context, userID, productID string, quantity int) (*domain.CartItem, error) {
	s.upserts++
	for i := range s.items {
		if s.items[i].ProductID == productID {
			s.items[i].Quantity += quantity
			return &s.items[i], nil
		}
	}
	item := domain.CartItem{ID: "line", UserID: userID, ProductID: productID, Quantity: quantity}
	s.items = append(s.items, item)
	return &item, nil
}

func (s *stubCartRepo) SetQuantity(ctx context.Context, userID, id string, quantity int) (*domain.CartItem, error) {
	s.lastQty = quantity
	return &domain.CartItem{ID: id, Quantity: quantity}, nil
}

func (s *stubCartRepo) Delete(ctx context.Context, userID, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubCartRepo) DeleteByUser(ctx context.Context, userID string) error {
	s.clearedUser = userID
	return nil
}

type stubProductRepo struct {
	products map[string]*domain.Product
}

func (s *stubProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestAddIncrementsExistingLine(t *testing.T) {
	carts := &stubCartRepo{}
	products := &stubProductRepo{products: map[string]*domain.Product{
		"p1": {ID: "p1", Price: mustDecimal(t, "4.50")},
	}}
	svc := New(carts, products, nil)

	if _, err := svc.Add(context.Background(), "u1", "p1", 1); err != nil {
		t.Fatalf("first add: %v", err)
	}
	item, err := svc.Add(context.Background(), "u1", "p1", 2)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if item.Quantity != 3 {
		t.Fatalf("quantity = %d, want 3", item.Quantity)
	}
	if len(carts.items) != 1 {
		t.Fatalf("lines = %d, want a single merged line", len(carts.items))
	}
}

func TestAddUnknownProduct(t *testing.T) {
	svc := New(&stubCartRepo{}, &stubProductRepo{}, nil)

	_, err := svc.Add(context.Background(), "u1", "nope", 1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAddRejectsZeroQuantity(t *testing.T) {
	carts := &stubCartRepo{}
	svc := New(carts, &stubProductRepo{}, nil)

	if _, err := svc.Add(context.Background(), "u1", "p1", 0); err == nil {
		t.Fatal("expected validation error")
	}
	if carts.upserts != 0 {
		t.Fatal("repository must not be touched on invalid input")
	}
}

func TestGetHidesDeletedProducts(t *testing.T) {
	carts := &stubCartRepo{items: []domain.CartItem{
		{ID: "l1", ProductID: "p1", Quantity: 2},
		{ID: "l2", ProductID: "gone", Quantity: 1},
	}}
	products := &stubProductRepo{products: map[string]*domain.Product{
		"p1": {ID: "p1", Price: mustDecimal(t, "12.25")},
	}}
	svc := New(carts, products, nil)

	view, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].ID != "l1" {
		t.Fatalf("items = %+v", view.Items)
	}
	if got := view.Total.String(); got != "24.5" {
		t.Fatalf("total = %s, want 24.5", got)
	}
}

func TestUpdateItemRejectsZeroQuantity(t *testing.T) {
	svc := New(&stubCartRepo{}, &stubProductRepo{}, nil)

	if _, err := svc.UpdateItem(context.Background(), "u1", "l1", 0); err == nil {
		t.Fatal("expected validation error")
	}
}
