package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientBalance indicates a wallet debit exceeding the spendable balance.
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	// ErrInsufficientStock indicates a requested quantity exceeding available stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidTransition indicates a status change the state machine forbids.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrPaymentMethodNotAllowed indicates a payment method the cart contents forbid.
	ErrPaymentMethodNotAllowed = errors.New("payment method not allowed for cart contents")
	// ErrEmptyCart indicates checkout against a cart with no line items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrProductInactive indicates a line item whose product is no longer purchasable.
	ErrProductInactive = errors.New("product is not active")
	// ErrCouponInvalid indicates a coupon that is unknown, inactive or larger than the subtotal.
	ErrCouponInvalid = errors.New("coupon is not valid")
	// ErrAlreadyRefunded guards the exactly-once refund on cancellation.
	ErrAlreadyRefunded = errors.New("order already refunded")
	// ErrDeliveryUnavailable indicates the requested delivery option was not
	// offered for this cart and destination.
	ErrDeliveryUnavailable = errors.New("delivery option not available")
)
