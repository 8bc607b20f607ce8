package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"marketplace-backend/internal/rewards"
	"marketplace-backend/internal/service/checkout"
	"marketplace-backend/internal/service/shipment"
)

// BookShipmentHandler books the courier for one vendor shipment. The
// shipment service no-ops on an already booked shipment, so redelivery is
// harmless.
func BookShipmentHandler(svc *shipment.Service) Handler {
	return func(ctx context.Context, payload []byte) error {
		var p checkout.BookShipmentPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decode booking payload: %w", err)
		}
		return svc.Book(ctx, p.OrderNumber, p.ShipmentID)
	}
}

// AwardPointsHandler calls the rewards collaborator. Failures retry through
// the outbox but never fail anything else.
func AwardPointsHandler(client rewards.Client) Handler {
	return func(ctx context.Context, payload []byte) error {
		var p checkout.AwardPointsPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decode rewards payload: %w", err)
		}
		return client.AwardOrderPoints(ctx, p.OrderNumber)
	}
}
