package delivery

import (
	"context"
	"encoding/json"
	"errors"

	"market-api/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
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

const deliveryColumns = `id::text, order_id::text, delivery_method, delivery_type, recipient_full_name,
       recipient_phone, city_ref, city_name, warehouse_ref, warehouse_address, delivery_address,
       delivery_cost::text, delivery_status, COALESCE(tracking_number, ''), delivery_data, created_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, in CreateDeliveryInput) (*domain.Delivery, error) {
	var dataJSON []byte
	if in.Data != nil {
		b, err := json.Marshal(in.Data)
		if err != nil {
			return nil, err
		}
		dataJSON = b
	}

	const q = `
INSERT INTO deliveries (
    order_id, delivery_method, delivery_type, recipient_full_name, recipient_phone,
    city_ref, city_name, warehouse_ref, warehouse_address, delivery_address, delivery_cost, delivery_data
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + deliveryColumns
	d, err := scanDelivery(r.pool.QueryRow(ctx, q,
		in.OrderID, in.Method, in.Type, in.RecipientFullName, in.RecipientPhone,
		in.CityRef, in.CityName, in.WarehouseRef, in.WarehouseAddress, in.Address,
		in.Cost.String(), dataJSON))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return d, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Delivery, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	const q = `SELECT ` + deliveryColumns + ` FROM deliveries WHERE id = $1`
	return r.fetch(ctx, q, id)
}

func (r *postgresRepo) GetByOrder(ctx context.Context, orderID string) (*domain.Delivery, error) {
	if !validID(orderID) {
		return nil, domain.ErrNotFound
	}
	const q = `SELECT ` + deliveryColumns + ` FROM deliveries WHERE order_id = $1`
	return r.fetch(ctx, q, orderID)
}

func (r *postgresRepo) GetByTracking(ctx context.Context, trackingNumber string) (*domain.Delivery, error) {
	const q = `SELECT ` + deliveryColumns + ` FROM deliveries WHERE tracking_number = $1`
	return r.fetch(ctx, q, trackingNumber)
}

func (r *postgresRepo) Update(ctx context.Context, id string, in UpdateDeliveryInput) (*domain.Delivery, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	const q = `
UPDATE deliveries
SET recipient_full_name = COALESCE($2, recipient_full_name),
    recipient_phone     = COALESCE($3, recipient_phone),
    city_ref            = COALESCE($4, city_ref),
    city_name           = COALESCE($5, city_name),
    warehouse_ref       = COALESCE($6, warehouse_ref),
    warehouse_address   = COALESCE($7, warehouse_address),
    delivery_address    = COALESCE($8, delivery_address),
    updated_at          = now()
WHERE id = $1
RETURNING ` + deliveryColumns
	d, err := scanDelivery(r.pool.QueryRow(ctx, q, id,
		in.RecipientFullName, in.RecipientPhone, in.CityRef, in.CityName,
		in.WarehouseRef, in.WarehouseAddress, in.Address))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func (r *postgresRepo) SetTracking(ctx context.Context, id, trackingNumber string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `
UPDATE deliveries SET tracking_number = $2, updated_at = now() WHERE id = $1
`, id, trackingNumber)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) SetStatus(ctx context.Context, id, status string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.pool.Exec(ctx, `
UPDATE deliveries SET delivery_status = $2, updated_at = now() WHERE id = $1
`, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) fetch(ctx context.Context, q string, arg any) (*domain.Delivery, error) {
	d, err := scanDelivery(r.pool.QueryRow(ctx, q, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func scanDelivery(row pgx.Row) (*domain.Delivery, error) {
	var d domain.Delivery
	var cost string
	var dataJSON []byte
	if err := row.Scan(&d.ID, &d.OrderID, &d.Method, &d.Type, &d.RecipientFullName,
		&d.RecipientPhone, &d.CityRef, &d.CityName, &d.WarehouseRef, &d.WarehouseAddress,
		&d.Address, &cost, &d.Status, &d.TrackingNumber, &dataJSON, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := decimal.NewFromString(cost)
	if err != nil {
		return nil, err
	}
	d.Cost = parsed
	if len(dataJSON) > 0 {
		if err := json.Unmarshal(dataJSON, &d.Data); err != nil {
			return nil, err
		}
	}
	return &d, nil
}
