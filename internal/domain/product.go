package domain

import (
	"strings"
	"time"
)

// ProductType is the closed classification resolved once at order ingestion.
// Downstream code never re-parses the raw catalog string.
type ProductType string

const (
	ProductPhysical ProductType = "physical"
	ProductDigital  ProductType = "digital"
	ProductService  ProductType = "service"
)

// ParseProductType maps a raw catalog type string onto the closed enum.
// The second return is false when the input was empty or unrecognised; the
// caller decides whether to log, but the resolved value is always physical
// in that case so shipping is never silently skipped.
func ParseProductType(raw string) (ProductType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "digital":
		return ProductDigital, true
	case "service":
		return ProductService, true
	case "physical":
		return ProductPhysical, true
	default:
		return ProductPhysical, false
	}
}

// Shippable reports whether items of this type need physical delivery.
func (t ProductType) Shippable() bool {
	return t != ProductDigital && t != ProductService
}

type Product struct {
	ID          string      `json:"id"`
	VendorID    string      `json:"vendorId"`
	SKU         string      `json:"sku"`
	Name        string      `json:"name"`
	ImageURL    string      `json:"imageUrl,omitempty"`
	PriceCents  int64       `json:"priceCents"`
	Currency    string      `json:"currency"`
	Type        ProductType `json:"type"`
	RawType     string      `json:"-"`
	Stock       int         `json:"stock"`
	WeightGrams int         `json:"weightGrams"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Active reports whether the product may still be purchased.
func (p Product) Active() bool {
	return strings.EqualFold(p.Status, "active")
}

type Vendor struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Origin         Address `json:"origin"`
	SupportsPickup bool    `json:"supportsPickup"`
}

type Coupon struct {
	Code          string `json:"code"`
	DiscountCents int64  `json:"discountCents"`
	Active        bool   `json:"active"`
	UsageCount    int    `json:"usageCount"`
	UsageLimit    int    `json:"usageLimit"`
}

// Usable reports whether the coupon may still be applied.
func (c Coupon) Usable() bool {
	if !c.Active {
		return false
	}
	return c.UsageLimit == 0 || c.UsageCount < c.UsageLimit
}
