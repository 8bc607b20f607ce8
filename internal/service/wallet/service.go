// Package wallet exposes the ledger operations over the wallet repository:
// credits, debits and the two-phase withdrawal flow.
package wallet

import (
	"context"
	"errors"
	"fmt"

	"marketplace-backend/internal/domain"
	walletrepo "marketplace-backend/internal/repository/wallet"
)

type Service struct {
	repo walletrepo.Repository
}

func New(repo walletrepo.Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the wallet with its full transaction history. A user without
// a wallet yet sees an empty one.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Wallet, error) {
	w, err := s.repo.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.Wallet{UserID: userID}, nil
	}
	return w, err
}

func (s *Service) Credit(ctx context.Context, userID string, amount int64, purpose, reference string) (*domain.WalletTransaction, error) {
	if purpose == "" {
		purpose = domain.PurposeTopUp
	}
	return s.repo.Credit(ctx, userID, amount, purpose, reference, nil)
}

// RequestWithdrawal reserves funds out of the spendable balance until an
// admin resolves the withdrawal.
func (s *Service) RequestWithdrawal(ctx context.Context, userID string, amount int64, reference string) (*domain.WalletTransaction, error) {
	txn, err := s.repo.ReserveWithdrawal(ctx, userID, amount, reference)
	if err != nil {
		return nil, fmt.Errorf("reserve withdrawal: %w", err)
	}
	return txn, nil
}

// ResolveWithdrawal completes or rejects a pending withdrawal; rejection
// restores the reserved funds.
func (s *Service) ResolveWithdrawal(ctx context.Context, userID, txnID string, approved bool) error {
	return s.repo.ResolveWithdrawal(ctx, userID, txnID, approved)
}
