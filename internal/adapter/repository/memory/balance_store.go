package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/agentpay/agentledger/internal/domain"
)

// BalanceStore is the default in-memory balance backend. A single mutex
// guards the map, making every check-then-mutate a critical section so
// racing debits can never overdraw an account.
type BalanceStore struct {
	mu       sync.RWMutex
	balances map[string]decimal.Decimal
}

// NewBalanceStore creates an empty in-memory balance store.
func NewBalanceStore() *BalanceStore {
	return &BalanceStore{
		balances: make(map[string]decimal.Decimal),
	}
}

// Balance returns the current balance, zero for unseen accounts.
func (s *BalanceStore) Balance(_ context.Context, accountID string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	balance, ok := s.balances[accountID]
	if !ok {
		return decimal.Zero, nil
	}
	return balance, nil
}

// Credit adds amount to the account, creating it at zero if absent.
func (s *BalanceStore) Credit(_ context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	newBalance := s.balances[accountID].Add(amount)
	s.balances[accountID] = newBalance
	return newBalance, nil
}

// Debit subtracts amount if the balance covers it. The check and the
// subtraction happen under the same lock.
func (s *BalanceStore) Debit(_ context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.balances[accountID]
	if current.LessThan(amount) {
		return decimal.Zero, &domain.InsufficientFundsError{
			Available: current,
			Required:  amount,
		}
	}

	newBalance := current.Sub(amount)
	s.balances[accountID] = newBalance
	return newBalance, nil
}

// SetBalance unconditionally overwrites the balance.
func (s *BalanceStore) SetBalance(_ context.Context, accountID string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balances[accountID] = amount
	return nil
}
