package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"genwear/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	shipping, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return nil, fmt.Errorf("encode shipping address: %w", err)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const insertOrder = `
INSERT INTO orders (id, order_number, customer_id, total_cents, discount_cents, discount_code, shipping_address, payment_method, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	if _, err := tx.Exec(ctx, insertOrder,
		o.ID, o.OrderNumber, o.CustomerID, o.TotalCents, o.DiscountCents, o.DiscountCode, shipping, string(o.PaymentMethod), string(o.Status), o.CreatedAt,
	); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}

	const insertItem = `
INSERT INTO order_items (id, order_id, product_id, name, price_cents, image, quantity, size, color, customization, position)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`
	for i, item := range o.Items {
		var custom []byte
		if item.Custom != nil {
			custom, err = json.Marshal(item.Custom)
			if err != nil {
				return nil, fmt.Errorf("encode customization: %w", err)
			}
		}
		if _, err := tx.Exec(ctx, insertItem,
			uuid.NewString(), o.ID, item.ProductID, item.Name, item.PriceCents,
			item.Image, item.Quantity, item.Size, item.Color, custom, i,
		); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	const q = `
SELECT id::text, order_number, customer_id::text, total_cents, discount_cents, discount_code, shipping_address, payment_method, status, created_at
FROM orders
WHERE id = $1
`
	o, err := r.scanOrder(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	const q = `
SELECT id::text, order_number, customer_id::text, total_cents, discount_cents, discount_code, shipping_address, payment_method, status, created_at
FROM orders
WHERE customer_id = $1
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *postgresRepo) SetStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var shipping []byte
	var method, status string
	if err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.CustomerID,
		&o.TotalCents,
		&o.DiscountCents,
		&o.DiscountCode,
		&shipping,
		&method,
		&status,
		&o.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(shipping, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("decode shipping address: %w", err)
	}
	o.PaymentMethod = domain.PaymentMethod(method)
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

func (r *postgresRepo) loadItems(ctx context.Context, o *domain.Order) error {
	const q = `
SELECT product_id, name, price_cents, image, quantity, size, color, customization
FROM order_items
WHERE order_id = $1
ORDER BY position ASC
`
	rows, err := r.pool.Query(ctx, q, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		var custom []byte
		if err := rows.Scan(
			&item.ProductID,
			&item.Name,
			&item.PriceCents,
			&item.Image,
			&item.Quantity,
			&item.Size,
			&item.Color,
			&custom,
		); err != nil {
			return err
		}
		if len(custom) > 0 {
			var c domain.Customization
			if err := json.Unmarshal(custom, &c); err != nil {
				return fmt.Errorf("decode customization: %w", err)
			}
			item.Custom = &c
		}
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}
