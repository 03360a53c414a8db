package product

import (
	"context"
	"errors"
	"io"
	"log"

	"market-api/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// validID reports whether id can hit a uuid column. Ids come straight from
// request paths, and a non-uuid value must read as "no such row", not as a
// failed cast.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const productColumns = `id::text, name, description, price::text, image_url, category, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, in CreateProductInput) (*domain.Product, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO products (name, description, price, image_url, category)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + productColumns
	p, err := scanProduct(tx.QueryRow(ctx, q, in.Name, in.Description, in.Price.String(), in.ImageURL, in.Category))
	if err != nil {
		return nil, err
	}

	for i, url := range in.PhotoURLs {
		if _, err := tx.Exec(ctx, `
INSERT INTO product_photos (product_id, url, position) VALUES ($1, $2, $3)
`, p.ID, url, i); err != nil {
			return nil, err
		}
	}
	for _, spec := range in.Specs {
		if _, err := tx.Exec(ctx, `
INSERT INTO product_specifications (product_id, name, value) VALUES ($1, $2, $3)
`, p.ID, spec.Name, spec.Value); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, p.ID)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	const q = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
SELECT id::text, product_id::text, url, position
FROM product_photos
WHERE product_id = $1
ORDER BY position ASC
`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var ph domain.ProductPhoto
		if err := rows.Scan(&ph.ID, &ph.ProductID, &ph.URL, &ph.Position); err != nil {
			return nil, err
		}
		p.Photos = append(p.Photos, ph)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	specRows, err := r.pool.Query(ctx, `
SELECT id::text, product_id::text, name, value
FROM product_specifications
WHERE product_id = $1
ORDER BY name ASC
`, id)
	if err != nil {
		return nil, err
	}
	defer specRows.Close()
	for specRows.Next() {
		var sp domain.ProductSpecification
		if err := specRows.Scan(&sp.ID, &sp.ProductID, &sp.Name, &sp.Value); err != nil {
			return nil, err
		}
		p.Specs = append(p.Specs, sp)
	}
	if err := specRows.Err(); err != nil {
		return nil, err
	}

	return p, nil
}

func (r *postgresRepo) List(ctx context.Context, category string) ([]domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`
	args := []any{}
	if category != "" {
		q = `SELECT ` + productColumns + ` FROM products WHERE category = $1 ORDER BY created_at DESC`
		args = append(args, category)
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) Update(ctx context.Context, id string, in UpdateProductInput) (*domain.Product, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	var price *string
	if in.Price != nil {
		s := in.Price.String()
		price = &s
	}
	const q = `
UPDATE products
SET name        = COALESCE($2, name),
    description = COALESCE($3, description),
    price       = COALESCE($4::numeric, price),
    image_url   = COALESCE($5, image_url),
    category    = COALESCE($6, category),
    updated_at  = now()
WHERE id = $1
RETURNING ` + productColumns
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id, in.Name, in.Description, price, in.ImageURL, in.Category))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) DeletePhotos(ctx context.Context, productID string) error {
	if !validID(productID) {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM product_photos WHERE product_id = $1`, productID)
	return err
}

func (r *postgresRepo) DeleteSpecs(ctx context.Context, productID string) error {
	if !validID(productID) {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM product_specifications WHERE product_id = $1`, productID)
	return err
}

func (r *postgresRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var price string
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &price, &p.ImageURL, &p.Category, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	p.Price = parsed
	return &p, nil
}
