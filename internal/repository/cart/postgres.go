package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"genwear/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetItems(ctx context.Context, customerID string) ([]domain.CartLine, error) {
	const q = `
SELECT items
FROM carts
WHERE customer_id = $1
`
	var raw []byte
	if err := r.pool.QueryRow(ctx, q, customerID).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.CartLine{}, nil
		}
		return nil, err
	}
	var items []domain.CartLine
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode cart items: %w", err)
	}
	if items == nil {
		items = []domain.CartLine{}
	}
	return items, nil
}

func (r *postgresRepo) ReplaceItems(ctx context.Context, customerID string, items []domain.CartLine) error {
	if items == nil {
		items = []domain.CartLine{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart items: %w", err)
	}
	const q = `
INSERT INTO carts (customer_id, items, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (customer_id)
DO UPDATE SET items = EXCLUDED.items, updated_at = NOW()
`
	_, err = r.pool.Exec(ctx, q, customerID, raw)
	return err
}
