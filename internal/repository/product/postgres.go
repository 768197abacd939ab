package product

import (
	"context"
	"encoding/json"
	"errors"

	"genwear/internal/domain"
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

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	sizesJSON, err := json.Marshal(p.Sizes)
	if err != nil {
		return nil, err
	}
	colorsJSON, err := json.Marshal(p.Colors)
	if err != nil {
		return nil, err
	}

	const q = `
INSERT INTO products (sku, name, description, price_cents, image, sizes, colors, customizable)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id::text, sku, name, description, price_cents, image, sizes, colors, customizable, created_at
`
	return r.scanProduct(r.pool.QueryRow(ctx, q,
		p.SKU, p.Name, p.Description, p.PriceCents, p.Image, sizesJSON, colorsJSON, p.Customizable,
	))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
SELECT id::text, sku, name, description, price_cents, image, sizes, colors, customizable, created_at
FROM products
WHERE id = $1
LIMIT 1
`
	return r.scanProduct(r.pool.QueryRow(ctx, q, id))
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Product, error) {
	const q = `
SELECT id::text, sku, name, description, price_cents, image, sizes, colors, customizable, created_at
FROM products
ORDER BY created_at ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := r.scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *postgresRepo) scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var sizesJSON, colorsJSON []byte
	err := row.Scan(
		&p.ID,
		&p.SKU,
		&p.Name,
		&p.Description,
		&p.PriceCents,
		&p.Image,
		&sizesJSON,
		&colorsJSON,
		&p.Customizable,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	if len(sizesJSON) > 0 {
		if err := json.Unmarshal(sizesJSON, &p.Sizes); err != nil {
			return nil, err
		}
	}
	if len(colorsJSON) > 0 {
		if err := json.Unmarshal(colorsJSON, &p.Colors); err != nil {
			return nil, err
		}
	}
	return &p, nil
}
