package wallet

import (
	"context"
	"errors"
	"io"
	"log"

	"marketplace-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Get(ctx context.Context, userID string) (*domain.Wallet, error) {
	const q = `
SELECT user_id::text, balance_cents, total_earned_cents, total_spent_cents, total_withdrawn_cents, pending_balance_cents
FROM wallets
WHERE user_id = $1
`
	var w domain.Wallet
	err := r.pool.QueryRow(ctx, q, userID).Scan(
		&w.UserID, &w.BalanceCents, &w.TotalEarnedCents, &w.TotalSpentCents,
		&w.TotalWithdrawnCents, &w.PendingBalanceCents,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	const txnQuery = `
SELECT id::text, txn_type, amount_cents, purpose, reference, related_order, status, created_at
FROM wallet_transactions
WHERE user_id = $1
ORDER BY created_at ASC, id ASC
`
	rows, err := r.pool.Query(ctx, txnQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var t domain.WalletTransaction
		if err := rows.Scan(&t.ID, &t.Type, &t.AmountCents, &t.Purpose, &t.Reference, &t.RelatedOrder, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		w.Transactions = append(w.Transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *postgresRepo) Credit(ctx context.Context, userID string, amount int64, purpose, reference string, relatedOrder *string) (*domain.WalletTransaction, error) {
	return r.mutate(ctx, userID, func(w *domain.Wallet) (domain.WalletTransaction, error) {
		return w.Credit(amount, purpose, reference, relatedOrder)
	})
}

func (r *postgresRepo) Debit(ctx context.Context, userID string, amount int64, purpose, reference string, relatedOrder *string) (*domain.WalletTransaction, error) {
	return r.mutate(ctx, userID, func(w *domain.Wallet) (domain.WalletTransaction, error) {
		return w.Debit(amount, purpose, reference, relatedOrder)
	})
}

func (r *postgresRepo) ReserveWithdrawal(ctx context.Context, userID string, amount int64, reference string) (*domain.WalletTransaction, error) {
	return r.mutate(ctx, userID, func(w *domain.Wallet) (domain.WalletTransaction, error) {
		return w.ReserveWithdrawal(amount, reference)
	})
}

// mutate locks the wallet row, applies the domain operation and persists
// the new counters plus the appended transaction atomically. The wallet row
// is created lazily on first use.
func (r *postgresRepo) mutate(ctx context.Context, userID string, op func(*domain.Wallet) (domain.WalletTransaction, error)) (*domain.WalletTransaction, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	w, err := lockWallet(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	txn, err := op(w)
	if err != nil {
		return nil, err
	}

	if err := saveCounters(ctx, tx, w); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `
INSERT INTO wallet_transactions (id, user_id, txn_type, amount_cents, purpose, reference, related_order, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`, txn.ID, userID, txn.Type, txn.AmountCents, txn.Purpose, txn.Reference, txn.RelatedOrder, txn.Status, txn.CreatedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Printf("wallet repo: user=%s %s %d cents purpose=%s ref=%s", userID, txn.Type, txn.AmountCents, txn.Purpose, txn.Reference)
	return &txn, nil
}

func (r *postgresRepo) ResolveWithdrawal(ctx context.Context, userID, txnID string, approved bool) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	w, err := lockWallet(ctx, tx, userID)
	if err != nil {
		return err
	}

	var pending domain.WalletTransaction
	err = tx.QueryRow(ctx, `
SELECT id::text, txn_type, amount_cents, purpose, reference, related_order, status, created_at
FROM wallet_transactions
WHERE id = $1 AND user_id = $2
FOR UPDATE
`, txnID, userID).Scan(&pending.ID, &pending.Type, &pending.AmountCents, &pending.Purpose, &pending.Reference, &pending.RelatedOrder, &pending.Status, &pending.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}

	w.Transactions = []domain.WalletTransaction{pending}
	if err := w.ResolveWithdrawal(txnID, approved); err != nil {
		return err
	}

	if err := saveCounters(ctx, tx, w); err != nil {
		return err
	}
	// The status guard makes a concurrent double-resolve impossible even if
	// the row lock is ever bypassed.
	cmd, err := tx.Exec(ctx, `
UPDATE wallet_transactions
SET status = $1
WHERE id = $2 AND status = 'pending'
`, w.Transactions[0].Status, txnID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrInvalidTransition
	}
	return tx.Commit(ctx)
}

func lockWallet(ctx context.Context, tx pgx.Tx, userID string) (*domain.Wallet, error) {
	if _, err := tx.Exec(ctx, `
INSERT INTO wallets (user_id)
VALUES ($1)
ON CONFLICT (user_id) DO NOTHING
`, userID); err != nil {
		return nil, err
	}
	var w domain.Wallet
	err := tx.QueryRow(ctx, `
SELECT user_id::text, balance_cents, total_earned_cents, total_spent_cents, total_withdrawn_cents, pending_balance_cents
FROM wallets
WHERE user_id = $1
FOR UPDATE
`, userID).Scan(&w.UserID, &w.BalanceCents, &w.TotalEarnedCents, &w.TotalSpentCents, &w.TotalWithdrawnCents, &w.PendingBalanceCents)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func saveCounters(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	_, err := tx.Exec(ctx, `
UPDATE wallets
SET balance_cents = $2,
    total_earned_cents = $3,
    total_spent_cents = $4,
    total_withdrawn_cents = $5,
    pending_balance_cents = $6
WHERE user_id = $1
`, w.UserID, w.BalanceCents, w.TotalEarnedCents, w.TotalSpentCents, w.TotalWithdrawnCents, w.PendingBalanceCents)
	return err
}
