// Package payment wraps the external payment gateway. Amounts are minor
// units; the order number is the globally unique reference reused for
// verification idempotency.
package payment

import "context"

// InitializeResult is the redirect payload returned to the caller for
// gateway-redirect settlement.
type InitializeResult struct {
	RedirectURL string `json:"redirectUrl"`
	AccessCode  string `json:"accessCode"`
}

// VerifyResult is the gateway's answer to a verification call.
type VerifyResult struct {
	Success     bool  `json:"success"`
	AmountCents int64 `json:"amountCents"`
}

type Gateway interface {
	Initialize(ctx context.Context, email string, amountCents int64, reference, callbackURL string, metadata map[string]string) (InitializeResult, error)
	Verify(ctx context.Context, reference string) (VerifyResult, error)
}
