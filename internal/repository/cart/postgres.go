package cart

import (
	"context"
	"errors"

	"market-api/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

const cartColumns = `id::text, user_id::text, product_id::text, quantity, added_at`

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error) {
	const q = `SELECT ` + cartColumns + ` FROM cart_items WHERE user_id = $1 ORDER BY added_at ASC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CartItem
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.AddedAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, userID, id string) (*domain.CartItem, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	const q = `SELECT ` + cartColumns + ` FROM cart_items WHERE user_id = $1 AND id = $2`
	return scanItem(r.pool.QueryRow(ctx, q, userID, id))
}

func (r *postgresRepo) Upsert(ctx context.Context, userID, productID string, quantity int) (*domain.CartItem, error) {
	const q = `
INSERT INTO cart_items (user_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, product_id)
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
RETURNING ` + cartColumns
	return scanItem(r.pool.QueryRow(ctx, q, userID, productID, quantity))
}

func (r *postgresRepo) SetQuantity(ctx context.Context, userID, id string, quantity int) (*domain.CartItem, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	const q = `
UPDATE cart_items
SET quantity = $3
WHERE user_id = $1 AND id = $2
RETURNING ` + cartColumns
	return scanItem(r.pool.QueryRow(ctx, q, userID, id, quantity))
}

func (r *postgresRepo) Delete(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) DeleteByIDs(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND id = ANY($2)`, userID, ids)
	return err
}

func (r *postgresRepo) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return err
}

func (r *postgresRepo) DeleteByProduct(ctx context.Context, productID string) error {
	if !validID(productID) {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE product_id = $1`, productID)
	return err
}

func scanItem(row pgx.Row) (*domain.CartItem, error) {
	var item domain.CartItem
	if err := row.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity, &item.AddedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}
