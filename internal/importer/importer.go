// Package importer loads catalog CSV exports into the product tables.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"market-api/internal/domain"
	productrepo "market-api/internal/repository/product"
	"github.com/shopspring/decimal"
)

type ProductWriter interface {
	Create(ctx context.Context, in productrepo.CreateProductInput) (*domain.Product, error)
}

// CSVImporter reads catalog CSV exports and creates products. Rows with an
// empty name but a photo URL are continuation rows attaching extra photos to
// the preceding product.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
	}
}

type csvRow struct {
	Name      string
	Desc      string
	Price     string
	Category  string
	ImageURL  string
	PhotoURLs []string
	Specs     string
}

// Run parses CSV rows and creates one product per named row.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		current  *csvRow
		imported int
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row := parseRow(record, index)
		if row == nil {
			continue
		}

		if row.Name != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}

		// Continuation rows (photos) belong to the current product.
		if current != nil && len(row.PhotoURLs) > 0 {
			current.PhotoURLs = append(current.PhotoURLs, row.PhotoURLs...)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	price, err := decimal.NewFromString(row.Price)
	if err != nil {
		return fmt.Errorf("invalid price %q for product %q", row.Price, row.Name)
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("non-positive price for product %q", row.Name)
	}

	in := productrepo.CreateProductInput{
		Name:        row.Name,
		Description: row.Desc,
		Price:       price,
		Category:    row.Category,
		ImageURL:    row.ImageURL,
		PhotoURLs:   row.PhotoURLs,
		Specs:       parseSpecs(row.Specs),
	}
	if _, err := i.productRepo.Create(ctx, in); err != nil {
		return fmt.Errorf("create product %q: %w", row.Name, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	name := pick(record, index, "name")
	photoURL := pick(record, index, "photo")

	if name == "" && photoURL == "" {
		return nil
	}

	row := &csvRow{
		Name:     name,
		Desc:     pick(record, index, "description"),
		Price:    pick(record, index, "price"),
		Category: pick(record, index, "category"),
		ImageURL: pick(record, index, "image"),
		Specs:    pick(record, index, "specs"),
	}
	if photoURL != "" {
		row.PhotoURLs = []string{photoURL}
	}
	return row
}

// parseSpecs splits "name=value;name=value" pairs.
func parseSpecs(raw string) []productrepo.SpecInput {
	if raw == "" {
		return nil
	}
	var specs []productrepo.SpecInput
	for _, pair := range strings.Split(raw, ";") {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if !ok || name == "" || value == "" {
			continue
		}
		specs = append(specs, productrepo.SpecInput{Name: name, Value: value})
	}
	return specs
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
