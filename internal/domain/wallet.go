package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TxnDebit  TransactionType = "debit"
	TxnCredit TransactionType = "credit"
)

type TransactionStatus string

const (
	TxnPending   TransactionStatus = "pending"
	TxnCompleted TransactionStatus = "completed"
	TxnFailed    TransactionStatus = "failed"
)

// Well-known transaction purposes.
const (
	PurposeOrderPayment = "order_payment"
	PurposeOrderRefund  = "order_refund"
	PurposeWithdrawal   = "withdrawal"
	PurposeTopUp        = "top_up"
)

// WalletTransaction is an append-only ledger entry. Its amount is never
// edited after append; only Status may transition pending→completed|failed,
// exactly once.
type WalletTransaction struct {
	ID           string            `json:"id"`
	Type         TransactionType   `json:"type"`
	AmountCents  int64             `json:"amountCents"`
	Purpose      string            `json:"purpose"`
	Reference    string            `json:"reference"`
	RelatedOrder *string           `json:"relatedOrder,omitempty"`
	Status       TransactionStatus `json:"status"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// Wallet owns a user's spendable balance. All balance arithmetic lives on
// the methods below so the ledger invariant holds for every code path: at
// any time, BalanceCents + PendingBalanceCents equals completed credits
// minus completed debits minus completed withdrawals.
type Wallet struct {
	UserID              string              `json:"userId"`
	BalanceCents        int64               `json:"balanceCents"`
	TotalEarnedCents    int64               `json:"totalEarnedCents"`
	TotalSpentCents     int64               `json:"totalSpentCents"`
	TotalWithdrawnCents int64               `json:"totalWithdrawnCents"`
	PendingBalanceCents int64               `json:"pendingBalanceCents"`
	Transactions        []WalletTransaction `json:"transactions,omitempty"`
}

// Credit appends a completed credit transaction and raises the balance, as
// one logical unit.
func (w *Wallet) Credit(amount int64, purpose, reference string, relatedOrder *string) (WalletTransaction, error) {
	if amount <= 0 {
		return WalletTransaction{}, fmt.Errorf("credit amount must be positive, got %d", amount)
	}
	txn := WalletTransaction{
		ID:           uuid.NewString(),
		Type:         TxnCredit,
		AmountCents:  amount,
		Purpose:      purpose,
		Reference:    reference,
		RelatedOrder: relatedOrder,
		Status:       TxnCompleted,
		CreatedAt:    time.Now().UTC(),
	}
	w.Transactions = append(w.Transactions, txn)
	w.BalanceCents += amount
	w.TotalEarnedCents += amount
	return txn, nil
}

// Debit appends a completed debit transaction and lowers the balance, as
// one logical unit. Fails without mutation when the balance is short.
func (w *Wallet) Debit(amount int64, purpose, reference string, relatedOrder *string) (WalletTransaction, error) {
	if amount <= 0 {
		return WalletTransaction{}, fmt.Errorf("debit amount must be positive, got %d", amount)
	}
	if w.BalanceCents < amount {
		return WalletTransaction{}, ErrInsufficientBalance
	}
	txn := WalletTransaction{
		ID:           uuid.NewString(),
		Type:         TxnDebit,
		AmountCents:  amount,
		Purpose:      purpose,
		Reference:    reference,
		RelatedOrder: relatedOrder,
		Status:       TxnCompleted,
		CreatedAt:    time.Now().UTC(),
	}
	w.Transactions = append(w.Transactions, txn)
	w.BalanceCents -= amount
	w.TotalSpentCents += amount
	return txn, nil
}

// ReserveWithdrawal moves funds from balance to pendingBalance and appends
// a pending debit. The completed totals are untouched until an admin
// resolves the withdrawal.
func (w *Wallet) ReserveWithdrawal(amount int64, reference string) (WalletTransaction, error) {
	if amount <= 0 {
		return WalletTransaction{}, fmt.Errorf("withdrawal amount must be positive, got %d", amount)
	}
	if w.BalanceCents < amount {
		return WalletTransaction{}, ErrInsufficientBalance
	}
	txn := WalletTransaction{
		ID:          uuid.NewString(),
		Type:        TxnDebit,
		AmountCents: amount,
		Purpose:     PurposeWithdrawal,
		Reference:   reference,
		Status:      TxnPending,
		CreatedAt:   time.Now().UTC(),
	}
	w.Transactions = append(w.Transactions, txn)
	w.BalanceCents -= amount
	w.PendingBalanceCents += amount
	return txn, nil
}

// ResolveWithdrawal transitions a pending withdrawal to completed or failed.
// Failed restores the balance; completed counts toward TotalWithdrawnCents.
// A transaction resolves at most once.
func (w *Wallet) ResolveWithdrawal(txnID string, approved bool) error {
	for i := range w.Transactions {
		t := &w.Transactions[i]
		if t.ID != txnID {
			continue
		}
		if t.Purpose != PurposeWithdrawal || t.Status != TxnPending {
			return ErrInvalidTransition
		}
		w.PendingBalanceCents -= t.AmountCents
		if approved {
			t.Status = TxnCompleted
			w.TotalWithdrawnCents += t.AmountCents
		} else {
			t.Status = TxnFailed
			w.BalanceCents += t.AmountCents
		}
		return nil
	}
	return ErrNotFound
}
