package product

import (
	"context"
	"errors"
	"testing"

	"market-api/internal/domain"
	productrepo "market-api/internal/repository/product"
	"github.com/shopspring/decimal"
)

type stubProductRepo struct {
	products      map[string]*domain.Product
	deleted       []string
	photosCleared []string
	specsCleared  []string
}

func (s *stubProductRepo) Create(ctx context.Context, in productrepo.CreateProductInput) (*domain.Product, error) {
	return &domain.Product{ID: "p1", Name: in.Name, Price: in.Price}, nil
}

func (s *stubProductRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *stubProductRepo) List(ctx context.Context, category string) ([]domain.Product, error) {
	return nil, nil
}

func (s *stubProductRepo) Update(ctx context.Context, id string, in productrepo.UpdateProductInput) (*domain.Product, error) {
	return s.GetByID(ctx, id)
}

func (s *stubProductRepo) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	delete(s.products, id)
	return nil
}

func (s *stubProductRepo) DeletePhotos(ctx context.Context, productID string) error {
	s.photosCleared = append(s.photosCleared, productID)
	return nil
}

func (s *stubProductRepo) DeleteSpecs(ctx context.Context, productID string) error {
	s.specsCleared = append(s.specsCleared, productID)
	return nil
}

type stubOrderRepo struct {
	affectedOrders []string
	emptyOrders    map[string]bool
	checked        []string
}

func (s *stubOrderRepo) RemoveItemsForProduct(ctx context.Context, productID string) ([]string, error) {
	return s.affectedOrders, nil
}

func (s *stubOrderRepo) DeleteIfEmpty(ctx context.Context, orderID string) (bool, error) {
	s.checked = append(s.checked, orderID)
	return s.emptyOrders[orderID], nil
}

type byProductStub struct {
	cleared []string
}

func (s *byProductStub) DeleteByProduct(ctx context.Context, productID string) error {
	s.cleared = append(s.cleared, productID)
	return nil
}

func TestDeleteCascades(t *testing.T) {
	products := &stubProductRepo{products: map[string]*domain.Product{
		"p1": {ID: "p1"},
	}}
	// ord-a had only this product, ord-b keeps other items
	orders := &stubOrderRepo{
		affectedOrders: []string{"ord-a", "ord-b"},
		emptyOrders:    map[string]bool{"ord-a": true},
	}
	carts := &byProductStub{}
	wishlists := &byProductStub{}
	reviews := &byProductStub{}
	svc := New(products, orders, carts, wishlists, reviews, nil)

	if err := svc.Delete(context.Background(), "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(orders.checked) != 2 {
		t.Fatalf("checked orders = %v, want both affected orders", orders.checked)
	}
	for name, stub := range map[string]*byProductStub{"cart": carts, "wishlist": wishlists, "reviews": reviews} {
		if len(stub.cleared) != 1 || stub.cleared[0] != "p1" {
			t.Fatalf("%s not cleared: %v", name, stub.cleared)
		}
	}
	if len(products.photosCleared) != 1 || len(products.specsCleared) != 1 {
		t.Fatal("photos/specs not cleared")
	}
	if len(products.deleted) != 1 || products.deleted[0] != "p1" {
		t.Fatalf("product not deleted: %v", products.deleted)
	}
}

func TestDeleteUnknownProduct(t *testing.T) {
	svc := New(&stubProductRepo{}, &stubOrderRepo{}, &byProductStub{}, &byProductStub{}, &byProductStub{}, nil)

	err := svc.Delete(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := New(&stubProductRepo{}, &stubOrderRepo{}, &byProductStub{}, &byProductStub{}, &byProductStub{}, nil)

	if _, err := svc.Create(context.Background(), productrepo.CreateProductInput{Name: " ", Price: decimal.NewFromInt(5)}); err == nil {
		t.Fatal("expected error for blank name")
	}
	if _, err := svc.Create(context.Background(), productrepo.CreateProductInput{Name: "x", Price: decimal.Zero}); err == nil {
		t.Fatal("expected error for non-positive price")
	}
}
