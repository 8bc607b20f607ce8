package product

import (
	"context"

	"marketplace-backend/internal/domain"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// DecrementStock conditionally lowers stock; returns
	// domain.ErrInsufficientStock when the remaining stock is short.
	DecrementStock(ctx context.Context, id string, qty int) error
	IncrementStock(ctx context.Context, id string, qty int) error
	GetCoupon(ctx context.Context, code string) (*domain.Coupon, error)
	IncrementCouponUsage(ctx context.Context, code string) error
}
