package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/agentpay/agentledger/internal/domain"
)

func newTestStore(t *testing.T) *BalanceStore {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewBalanceStore(client)
}

func TestBalanceStore_UnseenAccountIsZero(t *testing.T) {
	store := newTestStore(t)

	balance, err := store.Balance(context.Background(), "0xabc")
	require.NoError(t, err)
	require.True(t, balance.IsZero())
}

func TestBalanceStore_CreditDebit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	newBalance, err := store.Credit(ctx, "0xabc", decimal.RequireFromString("10.50"))
	require.NoError(t, err)
	require.True(t, newBalance.Equal(decimal.RequireFromString("10.5")), "got %s", newBalance)

	newBalance, err = store.Debit(ctx, "0xabc", decimal.RequireFromString("0.5"))
	require.NoError(t, err)
	require.True(t, newBalance.Equal(decimal.NewFromInt(10)), "got %s", newBalance)
}

func TestBalanceStore_DebitInsufficient(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Credit(ctx, "0xabc", decimal.NewFromInt(1))
	require.NoError(t, err)

	_, err = store.Debit(ctx, "0xabc", decimal.RequireFromString("1.01"))
	ife, ok := domain.IsInsufficientFunds(err)
	require.True(t, ok, "expected InsufficientFundsError, got %v", err)
	require.True(t, ife.Available.Equal(decimal.NewFromInt(1)), "available %s", ife.Available)
	require.True(t, ife.Required.Equal(decimal.RequireFromString("1.01")), "required %s", ife.Required)

	balance, err := store.Balance(ctx, "0xabc")
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(1)), "rejected debit changed balance: %s", balance)
}

func TestBalanceStore_SetBalance(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetBalance(ctx, "0xabc", decimal.NewFromInt(10)))

	balance, err := store.Balance(ctx, "0xabc")
	require.NoError(t, err)
	require.True(t, balance.Equal(decimal.NewFromInt(10)))
}

func TestBalanceStore_SubCentAmountsRoundToCents(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// 11.875 rounds to 11.88 at the store boundary.
	newBalance, err := store.Credit(ctx, "0xabc", decimal.RequireFromString("11.875"))
	require.NoError(t, err)
	require.True(t, newBalance.Equal(decimal.RequireFromString("11.88")), "got %s", newBalance)
}
