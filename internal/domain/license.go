package domain

import "time"

// License is issued for each digital or service item on first successful
// settlement of its order. At most one exists per (order, item) pair.
type License struct {
	Key         string     `json:"key"`
	UserID      string     `json:"userId"`
	OrderNumber string     `json:"orderNumber"`
	OrderItemID string     `json:"orderItemId"`
	ActivatedAt *time.Time `json:"activatedAt,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	Active      bool       `json:"active"`
	DeviceID    *string    `json:"deviceId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
