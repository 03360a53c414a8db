package wishlist

import (
	"context"
	"errors"

	"market-api/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// validID keeps non-uuid path ids away from the uuid casts; they read as
// "no such row".
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Add(ctx context.Context, userID, productID string) (*domain.WishlistItem, error) {
	const q = `
INSERT INTO wishlist_items (user_id, product_id)
VALUES ($1, $2)
RETURNING id::text, user_id::text, product_id::text, added_at
`
	var item domain.WishlistItem
	if err := r.pool.QueryRow(ctx, q, userID, productID).Scan(&item.ID, &item.UserID, &item.ProductID, &item.AddedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return &item, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	const q = `
SELECT id::text, user_id::text, product_id::text, added_at
FROM wishlist_items
WHERE user_id = $1
ORDER BY added_at DESC
`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.WishlistItem
	for rows.Next() {
		var item domain.WishlistItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.AddedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) Delete(ctx context.Context, userID, productID string) error {
	if !validID(productID) {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM wishlist_items WHERE user_id = $1`, userID)
	return err
}

func (r *postgresRepo) DeleteByProduct(ctx context.Context, productID string) error {
	if !validID(productID) {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM wishlist_items WHERE product_id = $1`, productID)
	return err
}
