package license

import (
	"context"

	"marketplace-backend/internal/domain"
)

type Repository interface {
	// CreateIfAbsent inserts the license unless one already exists for the
	// same (order, item) pair, making issuance safe under settlement
	// replays. Returns true when a new license was created.
	CreateIfAbsent(ctx context.Context, l domain.License) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]domain.License, error)
}
