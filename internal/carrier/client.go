// Package carrier wraps the external carrier-rate collaborator: address
// validation, rate quotes, courier booking, tracking and cancellation.
package carrier

import (
	"context"
	"time"

	"marketplace-backend/internal/domain"
)

// RateItem describes one physical parcel line sent to the rate endpoint.
type RateItem struct {
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	ValueCents  int64  `json:"valueCents"`
	WeightGrams int    `json:"weightGrams"`
}

// RateRequest is the input to a per-vendor rate quote.
type RateRequest struct {
	SenderCode   string     `json:"senderCode"`
	ReceiverCode string     `json:"receiverCode"`
	Items        []RateItem `json:"items"`
	PickupDate   time.Time  `json:"pickupDate"`
	CategoryID   string     `json:"categoryId,omitempty"`
}

// Courier is one named quote returned by the collaborator.
type Courier struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Service       string `json:"service"` // pickup, standard or express
	AmountCents   int64  `json:"amountCents"`
	EstimatedDays int    `json:"estimatedDays"`
}

// RateResponse carries the quotes plus the token required to book one.
type RateResponse struct {
	RequestToken string    `json:"requestToken"`
	Couriers     []Courier `json:"couriers"`
}

// Client is the contract the orchestrator requires from the carrier-rate
// collaborator. Implementations must be safe for concurrent use; vendor
// groups are quoted and booked in parallel.
type Client interface {
	ValidateAddress(ctx context.Context, addr domain.Address) (string, error)
	FetchRates(ctx context.Context, req RateRequest) (RateResponse, error)
	Book(ctx context.Context, requestToken, courierID string) (string, error)
	Track(ctx context.Context, trackingRef string) (string, error)
	Cancel(ctx context.Context, trackingRef string) error
}
