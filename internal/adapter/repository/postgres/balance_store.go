package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/agentpay/agentledger/internal/domain"
)

// BalanceStore persists balances in PostgreSQL. The conditional debit
// locks the account row so check-then-subtract is a single critical
// section per account.
type BalanceStore struct {
	pool *pgxpool.Pool
}

// NewBalanceStore creates a Postgres-backed balance store.
func NewBalanceStore(pool *pgxpool.Pool) *BalanceStore {
	return &BalanceStore{pool: pool}
}

// Balance returns the current balance, zero for unseen accounts.
func (s *BalanceStore) Balance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var raw string
	err := s.pool.QueryRow(ctx,
		`SELECT balance::text FROM balances WHERE account_id = $1`,
		accountID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("query balance: %w", err)
	}

	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse balance: %w", err)
	}
	return balance, nil
}

// Credit adds amount, creating the account row at zero if absent.
func (s *BalanceStore) Credit(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	var raw string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO balances (account_id, balance)
		 VALUES ($1, $2)
		 ON CONFLICT (account_id)
		 DO UPDATE SET balance = balances.balance + EXCLUDED.balance, updated_at = now()
		 RETURNING balance::text`,
		accountID, amount.String(),
	).Scan(&raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("credit balance: %w", err)
	}

	newBalance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse balance: %w", err)
	}
	return newBalance, nil
}

// Debit locks the account row, checks funds, and subtracts. On short
// funds the transaction rolls back leaving the balance untouched.
func (s *BalanceStore) Debit(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return decimal.Zero, fmt.Errorf("begin debit: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Ensure the row exists so FOR UPDATE has something to lock.
	if _, err := tx.Exec(ctx,
		`INSERT INTO balances (account_id, balance) VALUES ($1, 0)
		 ON CONFLICT (account_id) DO NOTHING`,
		accountID,
	); err != nil {
		return decimal.Zero, fmt.Errorf("ensure account: %w", err)
	}

	var raw string
	if err := tx.QueryRow(ctx,
		`SELECT balance::text FROM balances WHERE account_id = $1 FOR UPDATE`,
		accountID,
	).Scan(&raw); err != nil {
		return decimal.Zero, fmt.Errorf("lock balance: %w", err)
	}

	current, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse balance: %w", err)
	}

	if current.LessThan(amount) {
		return decimal.Zero, &domain.InsufficientFundsError{
			Available: current,
			Required:  amount,
		}
	}

	newBalance := current.Sub(amount)
	if _, err := tx.Exec(ctx,
		`UPDATE balances SET balance = $2, updated_at = now() WHERE account_id = $1`,
		accountID, newBalance.String(),
	); err != nil {
		return decimal.Zero, fmt.Errorf("update balance: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("commit debit: %w", err)
	}
	return newBalance, nil
}

// SetBalance unconditionally overwrites the balance.
func (s *BalanceStore) SetBalance(ctx context.Context, accountID string, amount decimal.Decimal) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO balances (account_id, balance)
		 VALUES ($1, $2)
		 ON CONFLICT (account_id)
		 DO UPDATE SET balance = EXCLUDED.balance, updated_at = now()`,
		accountID, amount.String(),
	)
	if err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	return nil
}
