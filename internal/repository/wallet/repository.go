package wallet

import (
	"context"

	"marketplace-backend/internal/domain"
)

// Repository persists wallets and their append-only transaction log. Every
// mutating operation runs the balance update and the transaction append in
// one database transaction with the wallet row locked, so concurrent
// operations against the same wallet are serialized and the two writes are
// never observable independently.
type Repository interface {
	Get(ctx context.Context, userID string) (*domain.Wallet, error)
	Credit(ctx context.Context, userID string, amount int64, purpose, reference string, relatedOrder *string) (*domain.WalletTransaction, error)
	Debit(ctx context.Context, userID string, amount int64, purpose, reference string, relatedOrder *string) (*domain.WalletTransaction, error)
	ReserveWithdrawal(ctx context.Context, userID string, amount int64, reference string) (*domain.WalletTransaction, error)
	ResolveWithdrawal(ctx context.Context, userID, txnID string, approved bool) error
}
