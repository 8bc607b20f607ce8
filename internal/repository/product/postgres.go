package product

import (
	"context"
	"errors"
	"io"
	"log"

	"marketplace-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
SELECT id::text, vendor_id::text, sku, name, COALESCE(image_url, ''), price_cents, currency,
       COALESCE(product_type, ''), stock, weight_grams, status, created_at
FROM products
WHERE id = $1
`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&p.ID, &p.VendorID, &p.SKU, &p.Name, &p.ImageURL, &p.PriceCents, &p.Currency,
		&p.RawType, &p.Stock, &p.WeightGrams, &p.Status, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	resolved, known := domain.ParseProductType(p.RawType)
	if !known && p.RawType != "" {
		r.logger.Printf("product repo: id=%s unknown product_type %q, treating as physical", id, p.RawType)
	}
	p.Type = resolved
	return &p, nil
}

func (r *postgresRepo) DecrementStock(ctx context.Context, id string, qty int) error {
	const q = `
UPDATE products
SET stock = stock - $2
WHERE id = $1 AND stock >= $2
`
	cmd, err := r.pool.Exec(ctx, q, id, qty)
	if err != nil {
		r.logger.Printf("product repo: decrement id=%s qty=%d error=%v", id, qty, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInsufficientStock
	}
	return nil
}

func (r *postgresRepo) IncrementStock(ctx context.Context, id string, qty int) error {
	const q = `
UPDATE products
SET stock = stock + $2
WHERE id = $1
`
	cmd, err := r.pool.Exec(ctx, q, id, qty)
	if err != nil {
		r.logger.Printf("product repo: increment id=%s qty=%d error=%v", id, qty, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) GetCoupon(ctx context.Context, code string) (*domain.Coupon, error) {
	const q = `
SELECT code, discount_cents, active, usage_count, usage_limit
FROM coupons
WHERE code = $1
`
	var c domain.Coupon
	err := r.pool.QueryRow(ctx, q, code).Scan(&c.Code, &c.DiscountCents, &c.Active, &c.UsageCount, &c.UsageLimit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepo) IncrementCouponUsage(ctx context.Context, code string) error {
	const q = `
UPDATE coupons
SET usage_count = usage_count + 1
WHERE code = $1
`
	cmd, err := r.pool.Exec(ctx, q, code)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
