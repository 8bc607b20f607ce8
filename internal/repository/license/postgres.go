package license

import (
	"context"

	"marketplace-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) CreateIfAbsent(ctx context.Context, l domain.License) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `
INSERT INTO licenses (key, user_id, order_number, order_item_id, activated_at, expires_at, active, device_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (order_number, order_item_id) DO NOTHING
`, l.Key, l.UserID, l.OrderNumber, l.OrderItemID, l.ActivatedAt, l.ExpiresAt, l.Active, l.DeviceID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.License, error) {
	rows, err := r.pool.Query(ctx, `
SELECT key, user_id::text, order_number, order_item_id::text, activated_at, expires_at, active, device_id, created_at
FROM licenses
WHERE user_id = $1
ORDER BY created_at DESC
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.License
	for rows.Next() {
		var l domain.License
		if err := rows.Scan(&l.Key, &l.UserID, &l.OrderNumber, &l.OrderItemID, &l.ActivatedAt, &l.ExpiresAt, &l.Active, &l.DeviceID, &l.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
