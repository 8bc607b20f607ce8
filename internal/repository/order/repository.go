package order

import (
	"context"

	"marketplace-backend/internal/domain"
)

// Repository persists the Order aggregate: the order row, its immutable
// item snapshots and its embedded vendor shipments. Status transitions are
// conditional UPDATEs so each transition fires at most once regardless of
// concurrent or replayed callers.
type Repository interface {
	Create(ctx context.Context, o domain.Order) error
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)

	// CompletePayment transitions payment pending→completed and fulfillment
	// to the given status. Returns false when the order had already left
	// payment-pending, in which case nothing was written.
	CompletePayment(ctx context.Context, number string, fulfillment domain.FulfillmentStatus) (bool, error)
	// MarkPaymentFailed terminally fails an order whose initial gateway call
	// did not go through.
	MarkPaymentFailed(ctx context.Context, number, reason string) error
	SetGatewayRef(ctx context.Context, number, ref string) error

	// UpdateFulfillment moves fulfillment from exactly `from` to `to`;
	// returns false when the order was no longer at `from`.
	UpdateFulfillment(ctx context.Context, number string, from, to domain.FulfillmentStatus) (bool, error)
	// Cancel sets fulfillment to cancelled with a reason, only while the
	// order is still pending or confirmed.
	Cancel(ctx context.Context, number, reason string) (bool, error)
	// MarkRefunded records the refund exactly once; returns false when the
	// order was not refundable (unpaid or already refunded).
	MarkRefunded(ctx context.Context, number string, amount int64, reason string) (bool, error)

	// SetShipmentBooked persists the booking result; returns false when the
	// shipment already carried a tracking reference.
	SetShipmentBooked(ctx context.Context, shipmentID, courier, trackingRef string) (bool, error)
	CancelShipments(ctx context.Context, number string) error
}
