package wishlist

import (
	"context"
	"errors"
	"testing"

	"market-api/internal/domain"
)

type stubWishlistRepo struct {
	items []domain.WishlistItem
}

func (s *stubWishlistRepo) Add(ctx context.Context, userID, productID string) (*domain.WishlistItem, error) {
	for _, item := range s.items {
		if item.UserID == userID && item.ProductID == productID {
			return nil, domain.ErrAlreadyExists
		}
	}
	item := domain.WishlistItem{ID: "w1", UserID: userID, ProductID: productID}
	s.items = append(s.items, item)
	return &item, nil
}

func (s *stubWishlistRepo) ListByUser(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	return s.items, nil
}

func (s *stubWishlistRepo) Delete(ctx context.Context, userID, productID string) error {
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

func TestAddDuplicate(t *testing.T) {
	products := &stubProductRepo{products: map[string]*domain.Product{"p1": {ID: "p1"}}}
	svc := New(&stubWishlistRepo{}, products, nil)

	if _, err := svc.Add(context.Background(), "u1", "p1"); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := svc.Add(context.Background(), "u1", "p1"); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestAddUnknownProduct(t *testing.T) {
	svc := New(&stubWishlistRepo{}, &stubProductRepo{}, nil)

	if _, err := svc.Add(context.Background(), "u1", "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListDropsDeletedProducts(t *testing.T) {
	wishlists := &stubWishlistRepo{items: []domain.WishlistItem{
		{ID: "w1", UserID: "u1", ProductID: "p1"},
		{ID: "w2", UserID: "u1", ProductID: "gone"},
	}}
	products := &stubProductRepo{products: map[string]*domain.Product{"p1": {ID: "p1", Name: "Widget"}}}
	svc := New(wishlists, products, nil)

	entries, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].Product.Name != "Widget" {
		t.Fatalf("entries = %+v", entries)
	}
}
