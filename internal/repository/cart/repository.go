package cart

import (
	"context"

	"marketplace-backend/internal/domain"
)

type Repository interface {
	GetActiveByUser(ctx context.Context, userID string) (*domain.Cart, error)
	// Clear removes the cart and its lines after the order it produced has
	// been durably created.
	Clear(ctx context.Context, cartID string) error
}
