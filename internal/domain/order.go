package domain

import "time"

// FulfillmentStatus tracks physical progress of an order. It evolves
// independently of PaymentStatus: a confirmed order can still be unpaid
// (cash on delivery) and a paid order can still be pending fulfillment.
type FulfillmentStatus string

const (
	FulfillmentPending    FulfillmentStatus = "pending"
	FulfillmentConfirmed  FulfillmentStatus = "confirmed"
	FulfillmentProcessing FulfillmentStatus = "processing"
	FulfillmentShipped    FulfillmentStatus = "shipped"
	FulfillmentInTransit  FulfillmentStatus = "in_transit"
	FulfillmentDelivered  FulfillmentStatus = "delivered"
	FulfillmentCancelled  FulfillmentStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

type DeliveryType string

const (
	DeliveryStandard DeliveryType = "standard"
	DeliveryExpress  DeliveryType = "express"
	DeliverySameDay  DeliveryType = "same_day"
	DeliveryPickup   DeliveryType = "pickup"
	DeliveryDigital  DeliveryType = "digital"
)

type PaymentMethod string

const (
	MethodGateway        PaymentMethod = "gateway"
	MethodWallet         PaymentMethod = "wallet"
	MethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

type ShipmentStatus string

const (
	ShipmentPending   ShipmentStatus = "pending"
	ShipmentCreated   ShipmentStatus = "created"
	ShipmentCancelled ShipmentStatus = "cancelled"
)

// OrderItem is an immutable snapshot taken at order creation. It never
// changes afterwards, even if the source product is repriced or deleted.
type OrderItem struct {
	ID             string      `json:"id"`
	ProductID      string      `json:"productId"`
	Name           string      `json:"name"`
	ImageURL       string      `json:"imageUrl,omitempty"`
	Variant        string      `json:"variant,omitempty"`
	UnitPriceCents int64       `json:"unitPriceCents"`
	Quantity       int         `json:"quantity"`
	VendorID       string      `json:"vendorId"`
	Type           ProductType `json:"type"`
	WeightGrams    int         `json:"weightGrams"`
}

// Shippable reports whether the item needs a physical shipment.
func (i OrderItem) Shippable() bool {
	return i.Type.Shippable()
}

// VendorShipment is the per-vendor physical portion of an order. One exists
// for every vendor that contributed at least one physical item.
type VendorShipment struct {
	ID          string         `json:"id"`
	OrderNumber string         `json:"orderNumber"`
	VendorID    string         `json:"vendorId"`
	VendorName  string         `json:"vendorName"`
	Origin      Address        `json:"origin"`
	ItemIDs     []string       `json:"itemIds"`
	CostCents   int64          `json:"costCents"`
	Courier     string         `json:"courier,omitempty"`
	TrackingRef string         `json:"trackingRef,omitempty"`
	Status      ShipmentStatus `json:"status"`
}

// Booked reports whether a courier booking already exists; re-booking a
// booked shipment is a no-op.
func (s VendorShipment) Booked() bool {
	return s.TrackingRef != ""
}

// Order is the aggregate root of a settled cart. Created once, mutated only
// through the state machine transitions, never deleted.
type Order struct {
	Number            string            `json:"number"`
	UserID            string            `json:"userId"`
	Items             []OrderItem       `json:"items"`
	Shipments         []VendorShipment  `json:"shipments,omitempty"`
	SubtotalCents     int64             `json:"subtotalCents"`
	DiscountCents     int64             `json:"discountCents"`
	ShippingCents     int64             `json:"shippingCents"`
	TaxCents          int64             `json:"taxCents"`
	TotalCents        int64             `json:"totalCents"`
	DeliveryType      DeliveryType      `json:"deliveryType"`
	Destination       Address           `json:"destination"`
	Status            FulfillmentStatus `json:"status"`
	PaymentStatus     PaymentStatus     `json:"paymentStatus"`
	PaymentMethod     PaymentMethod     `json:"paymentMethod"`
	CouponCode        *string           `json:"couponCode,omitempty"`
	GatewayRef        *string           `json:"gatewayRef,omitempty"`
	RefundAmountCents *int64            `json:"refundAmountCents,omitempty"`
	RefundReason      *string           `json:"refundReason,omitempty"`
	CancelReason      *string           `json:"cancelReason,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// ComputeTotal recomputes the order total from its components. The stored
// TotalCents must always equal this; it is never trusted from client input.
func (o Order) ComputeTotal() int64 {
	return o.SubtotalCents - o.DiscountCents + o.ShippingCents + o.TaxCents
}

// IsDigital reports whether every item is digital or service typed. Digital
// orders skip the shipment path entirely and deliver on payment.
func (o Order) IsDigital() bool {
	if len(o.Items) == 0 {
		return false
	}
	for _, it := range o.Items {
		if it.Shippable() {
			return false
		}
	}
	return true
}

// CanCancel reports whether cancellation is still legal. Once a parcel has
// left the vendor the order can no longer be cancelled.
func (o Order) CanCancel() bool {
	return o.Status == FulfillmentPending || o.Status == FulfillmentConfirmed
}

var fulfillmentRank = map[FulfillmentStatus]int{
	FulfillmentPending:    0,
	FulfillmentConfirmed:  1,
	FulfillmentProcessing: 2,
	FulfillmentShipped:    3,
	FulfillmentInTransit:  4,
	FulfillmentDelivered:  5,
}

// CanAdvanceTo reports whether a vendor-initiated fulfillment update from
// the current status to next is legal: strictly forward, never backward,
// and cancellation only through CanCancel.
func (o Order) CanAdvanceTo(next FulfillmentStatus) bool {
	if next == FulfillmentCancelled {
		return o.CanCancel()
	}
	cur, ok := fulfillmentRank[o.Status]
	if !ok {
		return false
	}
	nxt, ok := fulfillmentRank[next]
	if !ok {
		return false
	}
	return nxt > cur
}

// ShipmentByID returns the vendor shipment with the given id, if present.
func (o Order) ShipmentByID(id string) (VendorShipment, bool) {
	for _, s := range o.Shipments {
		if s.ID == id {
			return s, true
		}
	}
	return VendorShipment{}, false
}
