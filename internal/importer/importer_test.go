package importer

import (
	"context"
	"strings"
	"testing"

	"market-api/internal/domain"
	productrepo "market-api/internal/repository/product"
)

type stubProductRepo struct {
	items []productrepo.CreateProductInput
}

func (s *stubProductRepo) Create(_ context.Context, in productrepo.CreateProductInput) (*domain.Product, error) {
	s.items = append(s.items, in)
	return &domain.Product{ID: "p", Name: in.Name, Price: in.Price}, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `name,description,price,category,image,specs,photo
Prod One,Desc one,19.99,apparel,https://example.com/main1.jpg,material=cotton;fit=slim,https://example.com/img1.jpg
,,,,,,https://example.com/img2.jpg
Prod Two,Desc two,4.50,kitchen,,,`

	repo := &stubProductRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 products imported, got %d", count)
	}
	if len(repo.items) != 2 {
		t.Fatalf("expected 2 products saved, got %d", len(repo.items))
	}

	first := repo.items[0]
	if len(first.PhotoURLs) != 2 {
		t.Fatalf("expected 2 photos on first product, got %v", first.PhotoURLs)
	}
	if first.Name != "Prod One" || first.Price.String() != "19.99" || first.Category != "apparel" {
		t.Fatalf("unexpected product data: %+v", first)
	}
	if len(first.Specs) != 2 || first.Specs[0].Name != "material" {
		t.Fatalf("unexpected specs: %+v", first.Specs)
	}

	second := repo.items[1]
	if second.Name != "Prod Two" || len(second.PhotoURLs) != 0 {
		t.Fatalf("unexpected second product: %+v", second)
	}
}

func TestCSVImporter_InvalidPrice(t *testing.T) {
	csvData := `name,price
Bad Product,not-a-price`

	imp := NewCSVImporter(strings.NewReader(csvData), &stubProductRepo{})
	if _, err := imp.Run(context.Background()); err == nil {
		t.Fatal("expected error for invalid price")
	}
}
