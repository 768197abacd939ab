package customer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"

	"genwear/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

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

func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	addrJSON, err := marshalAddress(c.ShippingAddress)
	if err != nil {
		return nil, err
	}

	const q = `
INSERT INTO customers (email, password_hash, first_name, last_name, points, shipping_address)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id::text, email, password_hash, first_name, last_name, points, shipping_address, created_at
`
	return r.scanCustomer(r.pool.QueryRow(
		ctx,
		q,
		strings.ToLower(c.Email),
		c.PasswordHash,
		c.FirstName,
		c.LastName,
		c.Points,
		addrJSON,
	))
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	const q = `
SELECT id::text, email, password_hash, first_name, last_name, points, shipping_address, created_at
FROM customers
WHERE lower(email) = lower($1)
LIMIT 1
`
	return r.scanCustomer(r.pool.QueryRow(ctx, q, email))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	const q = `
SELECT id::text, email, password_hash, first_name, last_name, points, shipping_address, created_at
FROM customers
WHERE id = $1
LIMIT 1
`
	return r.scanCustomer(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) UpdateShippingAddress(ctx context.Context, id string, addr *domain.ShippingAddress) error {
	addrJSON, err := marshalAddress(addr)
	if err != nil {
		return err
	}
	cmd, err := r.pool.Exec(ctx, `UPDATE customers SET shipping_address = $1 WHERE id = $2`, addrJSON, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) AddPoints(ctx context.Context, id string, delta int64) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE customers SET points = points + $1 WHERE id = $2`, delta, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	var addrJSON []byte
	err := row.Scan(
		&c.ID,
		&c.Email,
		&c.PasswordHash,
		&c.FirstName,
		&c.LastName,
		&c.Points,
		&addrJSON,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Printf("customer repo: scan error=%v", err)
		return nil, err
	}
	if len(addrJSON) > 0 {
		var addr domain.ShippingAddress
		if err := json.Unmarshal(addrJSON, &addr); err != nil {
			r.logger.Printf("customer repo: decode address id=%s err=%v", c.ID, err)
			return nil, err
		}
		c.ShippingAddress = &addr
	}
	return &c, nil
}

func marshalAddress(addr *domain.ShippingAddress) ([]byte, error) {
	if addr == nil {
		return nil, nil
	}
	return json.Marshal(addr)
}
