package review

import (
	"context"
	"errors"

	"market-api/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

const reviewColumns = `id::text, user_id::text, product_id::text, rating, comment, created_at`

func (r *postgresRepo) Create(ctx context.Context, in CreateReviewInput) (*domain.Review, error) {
	const q = `
INSERT INTO reviews (user_id, product_id, rating, comment)
VALUES ($1, $2, $3, $4)
RETURNING ` + reviewColumns
	rev, err := scanReview(r.pool.QueryRow(ctx, q, in.UserID, in.ProductID, in.Rating, in.Comment))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return rev, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	const q = `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	rev, err := scanReview(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rev, nil
}

func (r *postgresRepo) ListByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	if !validID(productID) {
		return nil, nil
	}
	const q = `SELECT ` + reviewColumns + ` FROM reviews WHERE product_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, q, productID)
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	const q = `SELECT ` + reviewColumns + ` FROM reviews WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, q, userID)
}

func (r *postgresRepo) Exists(ctx context.Context, userID, productID string) (bool, error) {
	if !validID(productID) {
		return false, nil
	}
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reviews WHERE user_id = $1 AND product_id = $2)`, userID, productID).Scan(&ok)
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE user_id = $1`, userID)
	return err
}

func (r *postgresRepo) DeleteByProduct(ctx context.Context, productID string) error {
	if !validID(productID) {
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE product_id = $1`, productID)
	return err
}

func (r *postgresRepo) list(ctx context.Context, q string, arg any) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Review
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanReview(row pgx.Row) (*domain.Review, error) {
	var rev domain.Review
	if err := row.Scan(&rev.ID, &rev.UserID, &rev.ProductID, &rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
		return nil, err
	}
	return &rev, nil
}
