package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Fixed UUIDs so repeated runs reference the same rows and the cart/wallet
// seeds line up with the demo user.
const (
	DemoUserID     = "11111111-1111-1111-1111-111111111111"
	VendorGadgetID = "22222222-2222-2222-2222-222222222201"
	VendorBookID   = "22222222-2222-2222-2222-222222222202"
	VendorSoftID   = "22222222-2222-2222-2222-222222222203"
)

type vendorSeed struct {
	ID             string
	Name           string
	Street         string
	City           string
	State          string
	Country        string
	Zip            string
	Phone          string
	SupportsPickup bool
}

type productSeed struct {
	ID          string
	VendorID    string
	SKU         string
	Name        string
	PriceCents  int64
	Currency    string
	Type        string
	Stock       int64
	WeightGrams int64
}

// Apply inserts demo data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	vendors := []vendorSeed{
		{
			ID: VendorGadgetID, Name: "Gadget Corner",
			Street: "12 Harbor Rd", City: "Lagos", State: "Lagos", Country: "NG", Zip: "100001",
			Phone: "+2348010000001", SupportsPickup: true,
		},
		{
			ID: VendorBookID, Name: "Page Turners",
			Street: "4 Library Lane", City: "Abuja", State: "FCT", Country: "NG", Zip: "900001",
			Phone: "+2348010000002", SupportsPickup: false,
		},
		{
			ID: VendorSoftID, Name: "Bitwise Labs",
			Street: "", City: "", State: "", Country: "", Zip: "",
			Phone: "", SupportsPickup: false,
		},
	}
	for _, v := range vendors {
		if err := upsertVendor(ctx, pool, v); err != nil {
			return fmt.Errorf("upsert vendor %s: %w", v.Name, err)
		}
	}

	products := []productSeed{
		{
			ID:       "33333333-3333-3333-3333-333333333301",
			VendorID: VendorGadgetID, SKU: "SKU-HEADPHONES",
			Name: "Wireless Headphones", PriceCents: 25000, Currency: "USD",
			Type: "physical", Stock: 40, WeightGrams: 320,
		},
		{
			ID:       "33333333-3333-3333-3333-333333333302",
			VendorID: VendorGadgetID, SKU: "SKU-POWERBANK",
			Name: "20000mAh Power Bank", PriceCents: 18000, Currency: "USD",
			Type: "physical", Stock: 25, WeightGrams: 450,
		},
		{
			ID:       "33333333-3333-3333-3333-333333333303",
			VendorID: VendorBookID, SKU: "SKU-GO-BOOK",
			Name: "Distributed Systems in Practice", PriceCents: 9500, Currency: "USD",
			Type: "physical", Stock: 60, WeightGrams: 700,
		},
		{
			ID:       "33333333-3333-3333-3333-333333333304",
			VendorID: VendorSoftID, SKU: "SKU-PHOTO-SUITE",
			Name: "Photo Suite Pro License", PriceCents: 12000, Currency: "USD",
			Type: "digital", Stock: 9999, WeightGrams: 0,
		},
		{
			ID:       "33333333-3333-3333-3333-333333333305",
			VendorID: VendorSoftID, SKU: "SKU-SETUP-CALL",
			Name: "One-on-one Setup Session", PriceCents: 5000, Currency: "USD",
			Type: "service", Stock: 9999, WeightGrams: 0,
		},
	}
	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}

	if err := upsertCoupon(ctx, pool, "WELCOME10", 1000, 1000); err != nil {
		return fmt.Errorf("upsert coupon: %w", err)
	}
	if err := fundWallet(ctx, pool, DemoUserID, 100000); err != nil {
		return fmt.Errorf("fund wallet: %w", err)
	}
	return nil
}

func upsertVendor(ctx context.Context, pool *pgxpool.Pool, v vendorSeed) error {
	const q = `
INSERT INTO vendors (id, name, origin_street, origin_city, origin_state, origin_country, origin_zip, origin_phone, supports_pickup)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), $9)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    origin_street = EXCLUDED.origin_street,
    origin_city = EXCLUDED.origin_city,
    origin_state = EXCLUDED.origin_state,
    origin_country = EXCLUDED.origin_country,
    origin_zip = EXCLUDED.origin_zip,
    origin_phone = EXCLUDED.origin_phone,
    supports_pickup = EXCLUDED.supports_pickup
`
	_, err := pool.Exec(ctx, q, v.ID, v.Name, v.Street, v.City, v.State, v.Country, v.Zip, v.Phone, v.SupportsPickup)
	return err
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (id, vendor_id, sku, name, price_cents, currency, product_type, stock, weight_grams, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'active')
ON CONFLICT (id) DO UPDATE
SET sku = EXCLUDED.sku,
    name = EXCLUDED.name,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    product_type = EXCLUDED.product_type,
    stock = EXCLUDED.stock,
    weight_grams = EXCLUDED.weight_grams
`
	_, err := pool.Exec(ctx, q, p.ID, p.VendorID, p.SKU, p.Name, p.PriceCents, p.Currency, p.Type, p.Stock, p.WeightGrams)
	return err
}

func upsertCoupon(ctx context.Context, pool *pgxpool.Pool, code string, discountCents, usageLimit int64) error {
	const q = `
INSERT INTO coupons (code, discount_cents, active, usage_limit)
VALUES ($1, $2, TRUE, $3)
ON CONFLICT (code) DO UPDATE
SET discount_cents = EXCLUDED.discount_cents,
    active = TRUE,
    usage_limit = EXCLUDED.usage_limit
`
	_, err := pool.Exec(ctx, q, code, discountCents, usageLimit)
	return err
}

func fundWallet(ctx context.Context, pool *pgxpool.Pool, userID string, balanceCents int64) error {
	const q = `
INSERT INTO wallets (user_id, balance_cents, total_earned_cents)
VALUES ($1, $2, $2)
ON CONFLICT (user_id) DO NOTHING
`
	_, err := pool.Exec(ctx, q, userID, balanceCents)
	return err
}
