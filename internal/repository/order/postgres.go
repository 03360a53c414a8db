package order

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

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

const orderColumns = `id::text, user_id, total::text, status, created_at, completed_at,
       COALESCE(payment_id, ''), COALESCE(payment_url, ''), COALESCE(payment_currency, '')`

const itemColumns = `id::text, order_id::text, product_id::text, quantity, price::text`

func (r *postgresRepo) CreateWithItems(ctx context.Context, in CreateOrderInput) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO orders (user_id, total, status, payment_currency)
VALUES ($1, $2, 'Pending', $3)
RETURNING ` + orderColumns
	ord, err := scanOrder(tx.QueryRow(ctx, q, in.UserID, in.Total.String(), in.Currency))
	if err != nil {
		return nil, err
	}

	for _, item := range in.Items {
		var oi domain.OrderItem
		var price string
		err := tx.QueryRow(ctx, `
INSERT INTO order_items (order_id, product_id, quantity, price)
VALUES ($1, $2, $3, $4)
RETURNING `+itemColumns, ord.ID, item.ProductID, item.Quantity, item.Price.String()).
			Scan(&oi.ID, &oi.OrderID, &oi.ProductID, &oi.Quantity, &price)
		if err != nil {
			return nil, err
		}
		if oi.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		ord.Items = append(ord.Items, oi)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("order repo: create id=%s user_id=%s items=%d total=%s", ord.ID, ord.UserID, len(ord.Items), ord.Total)
	return ord, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.fetch(ctx, q, id)
}

func (r *postgresRepo) GetOwned(ctx context.Context, userID, id string) (*domain.Order, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 AND user_id = $2`
	return r.fetch(ctx, q, id, userID)
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *postgresRepo) ListAdmin(ctx context.Context, in ListAdminInput) ([]domain.Order, int, error) {
	countQ := `SELECT COUNT(*) FROM orders`
	listQ := `SELECT ` + orderColumns + ` FROM orders`
	args := []any{}
	if in.Status != "" {
		countQ += ` WHERE status = $1`
		listQ += ` WHERE status = $1`
		args = append(args, in.Status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQ += ` ORDER BY created_at DESC`
	if in.Limit > 0 {
		args = append(args, in.Limit, in.Offset)
		if in.Status != "" {
			listQ += ` LIMIT $2 OFFSET $3`
		} else {
			listQ += ` LIMIT $1 OFFSET $2`
		}
	}

	rows, err := r.pool.Query(ctx, listQ, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	orders, err := collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *postgresRepo) ItemsByOrder(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	if !validID(orderID) {
		return nil, domain.ErrNotFound
	}
	const q = `SELECT ` + itemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY id`
	rows, err := r.pool.Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		var price string
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &price); err != nil {
			return nil, err
		}
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) SetPaymentIntent(ctx context.Context, orderID, paymentID, paymentURL string) error {
	if !validID(orderID) {
		return domain.ErrNotFound
	}
	const q = `
UPDATE orders
SET payment_id = $2, payment_url = $3
WHERE id = $1 AND payment_id IS NULL
`
	cmd, err := r.pool.Exec(ctx, q, orderID, paymentID, paymentURL)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicatePaymentIntent
		}
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) SetStatus(ctx context.Context, orderID string, status domain.OrderStatus, completedAt *time.Time) error {
	if !validID(orderID) {
		return domain.ErrNotFound
	}
	const q = `
UPDATE orders
SET status = $2,
    completed_at = CASE WHEN $3::timestamptz IS NULL THEN completed_at ELSE COALESCE(completed_at, $3) END
WHERE id = $1
`
	cmd, err := r.pool.Exec(ctx, q, orderID, string(status), completedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) FakeComplete(ctx context.Context, orderID, paymentID string, completedAt time.Time) (*domain.Order, error) {
	if !validID(orderID) {
		return nil, domain.ErrNotFound
	}
	const q = `
UPDATE orders
SET status = 'Completed',
    completed_at = $3,
    payment_id = $2,
    payment_url = NULL,
    payment_currency = COALESCE(NULLIF(payment_currency, ''), 'USD')
WHERE id = $1
RETURNING ` + orderColumns
	ord, err := scanOrder(r.pool.QueryRow(ctx, q, orderID, paymentID, completedAt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return ord, nil
}

func (r *postgresRepo) HasCompletedWithProduct(ctx context.Context, userID, productID string) (bool, error) {
	if !validID(productID) {
		return false, nil
	}
	const q = `
SELECT EXISTS (
	SELECT 1
	FROM orders o
	JOIN order_items oi ON oi.order_id = o.id
	WHERE o.user_id = $1 AND oi.product_id = $2 AND o.status = 'Completed'
)
`
	var ok bool
	if err := r.pool.QueryRow(ctx, q, userID, productID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *postgresRepo) RemoveItemsForProduct(ctx context.Context, productID string) ([]string, error) {
	if !validID(productID) {
		return nil, nil
	}
	const q = `
DELETE FROM order_items
WHERE product_id = $1
RETURNING order_id::text
`
	rows, err := r.pool.Query(ctx, q, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var orderIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			orderIDs = append(orderIDs, id)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orderIDs) > 0 {
		r.logger.Printf("order repo: removed items product_id=%s orders=%d", productID, len(orderIDs))
	}
	return orderIDs, nil
}

func (r *postgresRepo) DeleteIfEmpty(ctx context.Context, orderID string) (bool, error) {
	if !validID(orderID) {
		return false, nil
	}
	const q = `
DELETE FROM orders
WHERE id = $1 AND NOT EXISTS (SELECT 1 FROM order_items WHERE order_id = $1)
`
	cmd, err := r.pool.Exec(ctx, q, orderID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *postgresRepo) AnonymizeUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `UPDATE orders SET user_id = $2 WHERE user_id = $1`, userID, domain.DeletedUserID)
	return err
}

func (r *postgresRepo) fetch(ctx context.Context, q string, args ...any) (*domain.Order, error) {
	ord, err := scanOrder(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return ord, nil
}

func collectOrders(rows pgx.Rows) ([]domain.Order, error) {
	var result []domain.Order
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ord)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var ord domain.Order
	var total string
	var status string
	if err := row.Scan(&ord.ID, &ord.UserID, &total, &status, &ord.CreatedAt, &ord.CompletedAt,
		&ord.PaymentID, &ord.PaymentURL, &ord.PaymentCurrency); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(total)
	if err != nil {
		return nil, err
	}
	ord.Total = parsed
	ord.Status = domain.OrderStatus(status)
	return &ord, nil
}
