package customer

import (
	"context"

	"genwear/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	UpdateShippingAddress(ctx context.Context, id string, addr *domain.ShippingAddress) error
	AddPoints(ctx context.Context, id string, delta int64) error
}
