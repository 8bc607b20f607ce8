package order

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

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
INSERT INTO orders (
	number, user_id, subtotal_cents, discount_cents, shipping_cents, tax_cents, total_cents,
	delivery_type, status, payment_status, payment_method, coupon_code,
	dest_name, dest_phone, dest_email, dest_street, dest_city, dest_state, dest_country, dest_zip
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
`,
		o.Number, o.UserID, o.SubtotalCents, o.DiscountCents, o.ShippingCents, o.TaxCents, o.TotalCents,
		o.DeliveryType, o.Status, o.PaymentStatus, o.PaymentMethod, o.CouponCode,
		o.Destination.Name, o.Destination.Phone, o.Destination.Email, o.Destination.Street,
		o.Destination.City, o.Destination.State, o.Destination.Country, o.Destination.ZipCode,
	); err != nil {
		return err
	}

	for _, it := range o.Items {
		if _, err := tx.Exec(ctx, `
INSERT INTO order_items (id, order_number, product_id, name, image_url, variant, unit_price_cents, quantity, vendor_id, product_type, weight_grams)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`, it.ID, o.Number, it.ProductID, it.Name, it.ImageURL, it.Variant, it.UnitPriceCents, it.Quantity, it.VendorID, it.Type, it.WeightGrams); err != nil {
			return err
		}
	}

	for _, s := range o.Shipments {
		if _, err := tx.Exec(ctx, `
INSERT INTO vendor_shipments (id, order_number, vendor_id, vendor_name, origin_street, origin_city, origin_state, origin_country, origin_zip, item_ids, cost_cents, courier, tracking_ref, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''), NULLIF($13, ''), $14)
`, s.ID, o.Number, s.VendorID, s.VendorName, s.Origin.Street, s.Origin.City, s.Origin.State, s.Origin.Country, s.Origin.ZipCode, s.ItemIDs, s.CostCents, s.Courier, s.TrackingRef, s.Status); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.logger.Printf("order repo: created number=%s items=%d shipments=%d total=%d", o.Number, len(o.Items), len(o.Shipments), o.TotalCents)
	return nil
}

func (r *postgresRepo) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	const q = `
SELECT number, user_id::text, subtotal_cents, discount_cents, shipping_cents, tax_cents, total_cents,
       delivery_type, status, payment_status, payment_method, coupon_code, gateway_ref,
       refund_amount_cents, refund_reason, cancel_reason,
       COALESCE(dest_name, ''), COALESCE(dest_phone, ''), COALESCE(dest_email, ''), COALESCE(dest_street, ''),
       COALESCE(dest_city, ''), COALESCE(dest_state, ''), COALESCE(dest_country, ''), COALESCE(dest_zip, ''),
       created_at, updated_at
FROM orders
WHERE number = $1
`
	var o domain.Order
	err := r.pool.QueryRow(ctx, q, number).Scan(
		&o.Number, &o.UserID, &o.SubtotalCents, &o.DiscountCents, &o.ShippingCents, &o.TaxCents, &o.TotalCents,
		&o.DeliveryType, &o.Status, &o.PaymentStatus, &o.PaymentMethod, &o.CouponCode, &o.GatewayRef,
		&o.RefundAmountCents, &o.RefundReason, &o.CancelReason,
		&o.Destination.Name, &o.Destination.Phone, &o.Destination.Email, &o.Destination.Street,
		&o.Destination.City, &o.Destination.State, &o.Destination.Country, &o.Destination.ZipCode,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if err := r.loadItems(ctx, &o); err != nil {
		return nil, err
	}
	if err := r.loadShipments(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepo) loadItems(ctx context.Context, o *domain.Order) error {
	rows, err := r.pool.Query(ctx, `
SELECT id::text, product_id::text, name, COALESCE(image_url, ''), COALESCE(variant, ''), unit_price_cents, quantity, vendor_id::text, product_type, weight_grams
FROM order_items
WHERE order_number = $1
ORDER BY created_at ASC, id ASC
`, o.Number)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Name, &it.ImageURL, &it.Variant, &it.UnitPriceCents, &it.Quantity, &it.VendorID, &it.Type, &it.WeightGrams); err != nil {
			return err
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func (r *postgresRepo) loadShipments(ctx context.Context, o *domain.Order) error {
	rows, err := r.pool.Query(ctx, `
SELECT id::text, vendor_id::text, vendor_name,
       COALESCE(origin_street, ''), COALESCE(origin_city, ''), COALESCE(origin_state, ''), COALESCE(origin_country, ''), COALESCE(origin_zip, ''),
       item_ids, cost_cents, COALESCE(courier, ''), COALESCE(tracking_ref, ''), status
FROM vendor_shipments
WHERE order_number = $1
ORDER BY vendor_id ASC
`, o.Number)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		s := domain.VendorShipment{OrderNumber: o.Number}
		if err := rows.Scan(&s.ID, &s.VendorID, &s.VendorName,
			&s.Origin.Street, &s.Origin.City, &s.Origin.State, &s.Origin.Country, &s.Origin.ZipCode,
			&s.ItemIDs, &s.CostCents, &s.Courier, &s.TrackingRef, &s.Status); err != nil {
			return err
		}
		s.Origin.Name = s.VendorName
		o.Shipments = append(o.Shipments, s)
	}
	return rows.Err()
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
SELECT number, user_id::text, subtotal_cents, discount_cents, shipping_cents, tax_cents, total_cents,
       delivery_type, status, payment_status, payment_method, created_at, updated_at
FROM orders
WHERE user_id = $1
ORDER BY created_at DESC
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.Number, &o.UserID, &o.SubtotalCents, &o.DiscountCents, &o.ShippingCents, &o.TaxCents, &o.TotalCents,
			&o.DeliveryType, &o.Status, &o.PaymentStatus, &o.PaymentMethod, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

func (r *postgresRepo) CompletePayment(ctx context.Context, number string, fulfillment domain.FulfillmentStatus) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `
UPDATE orders
SET payment_status = 'completed', status = $2, updated_at = now()
WHERE number = $1 AND payment_status = 'pending'
`, number, fulfillment)
	if err != nil {
		return false, err
	}
	transitioned := cmd.RowsAffected() > 0
	if transitioned {
		r.logger.Printf("order repo: payment completed number=%s fulfillment=%s", number, fulfillment)
	}
	return transitioned, nil
}

func (r *postgresRepo) MarkPaymentFailed(ctx context.Context, number, reason string) error {
	_, err := r.pool.Exec(ctx, `
UPDATE orders
SET payment_status = 'failed', status = 'cancelled', cancel_reason = $2, updated_at = now()
WHERE number = $1 AND payment_status = 'pending'
`, number, reason)
	return err
}

func (r *postgresRepo) SetGatewayRef(ctx context.Context, number, ref string) error {
	cmd, err := r.pool.Exec(ctx, `
UPDATE orders SET gateway_ref = $2, updated_at = now() WHERE number = $1
`, number, ref)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) UpdateFulfillment(ctx context.Context, number string, from, to domain.FulfillmentStatus) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `
UPDATE orders
SET status = $3, updated_at = now()
WHERE number = $1 AND status = $2
`, number, from, to)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *postgresRepo) Cancel(ctx context.Context, number, reason string) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `
UPDATE orders
SET status = 'cancelled', cancel_reason = $2, updated_at = now()
WHERE number = $1 AND status IN ('pending', 'confirmed')
`, number, reason)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *postgresRepo) MarkRefunded(ctx context.Context, number string, amount int64, reason string) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `
UPDATE orders
SET payment_status = 'refunded', refund_amount_cents = $2, refund_reason = $3, updated_at = now()
WHERE number = $1 AND payment_status = 'completed' AND refund_amount_cents IS NULL
`, number, amount, reason)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *postgresRepo) SetShipmentBooked(ctx context.Context, shipmentID, courier, trackingRef string) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `
UPDATE vendor_shipments
SET courier = $2, tracking_ref = $3, status = 'created'
WHERE id = $1 AND tracking_ref IS NULL
`, shipmentID, courier, trackingRef)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *postgresRepo) CancelShipments(ctx context.Context, number string) error {
	_, err := r.pool.Exec(ctx, `
UPDATE vendor_shipments
SET status = 'cancelled'
WHERE order_number = $1 AND status <> 'cancelled'
`, number)
	return err
}
