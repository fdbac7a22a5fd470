package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/agentpay/agentledger/internal/domain"
)

// BalanceStore keeps balances in Redis as integer minor units (cents), so
// the conditional debit can run as a single server-side script with no
// read-modify-write race and no floating-point drift.
type BalanceStore struct {
	client *redis.Client
	prefix string
}

// debitScript checks and subtracts in one atomic step. Returns the new
// balance in cents, or the current balance as {-1, cents} when funds are
// short.
var debitScript = redis.NewScript(`
local balance = tonumber(redis.call('GET', KEYS[1]) or '0')
local amount = tonumber(ARGV[1])
if balance < amount then
  return {-1, balance}
end
return {0, redis.call('DECRBY', KEYS[1], amount)}
`)

// NewBalanceStore creates a Redis-backed balance store.
func NewBalanceStore(client *redis.Client) *BalanceStore {
	return &BalanceStore{
		client: client,
		prefix: "balance:",
	}
}

func (s *BalanceStore) key(accountID string) string {
	return s.prefix + accountID
}

// toCents rounds amount to 2 decimal places and converts to minor units.
func toCents(amount decimal.Decimal) int64 {
	return amount.Round(2).Shift(2).IntPart()
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Shift(-2)
}

// Balance returns the current balance, zero for unseen accounts.
func (s *BalanceStore) Balance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	cents, err := s.client.Get(ctx, s.key(accountID)).Int64()
	if err == redis.Nil {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("redis balance: %w", err)
	}
	return fromCents(cents), nil
}

// Credit adds amount to the account and returns the new balance.
func (s *BalanceStore) Credit(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	cents, err := s.client.IncrBy(ctx, s.key(accountID), toCents(amount)).Result()
	if err != nil {
		return decimal.Zero, fmt.Errorf("redis credit: %w", err)
	}
	return fromCents(cents), nil
}

// Debit atomically checks funds and subtracts amount.
func (s *BalanceStore) Debit(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	required := toCents(amount)

	raw, err := debitScript.Run(ctx, s.client, []string{s.key(accountID)}, required).Slice()
	if err != nil {
		return decimal.Zero, fmt.Errorf("redis debit: %w", err)
	}
	if len(raw) != 2 {
		return decimal.Zero, fmt.Errorf("redis debit: unexpected script reply %v", raw)
	}

	status, _ := raw[0].(int64)
	cents, _ := raw[1].(int64)
	if status == -1 {
		return decimal.Zero, &domain.InsufficientFundsError{
			Available: fromCents(cents),
			Required:  fromCents(required),
		}
	}
	return fromCents(cents), nil
}

// SetBalance unconditionally overwrites the balance.
func (s *BalanceStore) SetBalance(ctx context.Context, accountID string, amount decimal.Decimal) error {
	if err := s.client.Set(ctx, s.key(accountID), toCents(amount), 0).Err(); err != nil {
		return fmt.Errorf("redis set balance: %w", err)
	}
	return nil
}
