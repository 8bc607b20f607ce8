package domain

import "time"

type Cart struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	CouponCode    *string    `json:"couponCode,omitempty"`
	DiscountCents int64      `json:"discountCents"`
	CreatedAt     time.Time  `json:"createdAt"`
	Lines         []CartLine `json:"lineItems,omitempty"`
}

type CartLine struct {
	ID             string    `json:"id"`
	CartID         string    `json:"cartId"`
	ProductID      string    `json:"productId"`
	Variant        string    `json:"variant,omitempty"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	CreatedAt      time.Time `json:"createdAt"`
}

// SubtotalCents sums unit price times quantity across all lines.
func (c Cart) SubtotalCents() int64 {
	var sum int64
	for _, l := range c.Lines {
		sum += l.UnitPriceCents * int64(l.Quantity)
	}
	return sum
}
