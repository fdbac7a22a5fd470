package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/agentpay/agentledger/internal/domain"
)

// BalanceStore persists account balances. Implementations own the
// atomicity of Debit: the sufficient-funds check and the subtraction must
// be a single critical section per account so racing debits can never
// overdraw.
type BalanceStore interface {
	// Balance returns the current balance, zero for unseen accounts.
	Balance(ctx context.Context, accountID string) (decimal.Decimal, error)
	// Credit adds amount to the account, creating it at zero if absent,
	// and returns the new balance.
	Credit(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error)
	// Debit subtracts amount and returns the new balance, or a
	// domain.InsufficientFundsError leaving the balance unchanged.
	Debit(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error)
	// SetBalance unconditionally overwrites the balance. Demo funding and
	// test fixtures only; never called from the paid-action path.
	SetBalance(ctx context.Context, accountID string, amount decimal.Decimal) error
}

// QuoteStore holds pending delivery quotes between request and confirm.
type QuoteStore interface {
	Put(ctx context.Context, quote *domain.DeliveryQuote) error
	// Get returns domain.ErrQuoteNotFound for unknown or consumed ids.
	Get(ctx context.Context, id string) (*domain.DeliveryQuote, error)
	Delete(ctx context.Context, id string) error
}

// IDGenerator generates unique identifiers for quotes, orders and
// deliveries.
type IDGenerator interface {
	Generate() string
}

// ToolRunner executes the external side effect behind a priced operation.
// It is only invoked after the funds check has passed and its failure must
// never result in a debit.
type ToolRunner interface {
	Run(ctx context.Context, op Operation, params ChargeParams) (map[string]any, error)
}

// DeliveryDispatch is the outcome of handing a confirmed quote to the
// delivery provider.
type DeliveryDispatch struct {
	DeliveryID           string
	TrackingURL          string
	Status               string
	EstimatedPickupTime  string
	EstimatedDropoffTime string
	SupportReference     string
	Simulated            bool
}

// DeliveryDispatcher sends a confirmed quote out for fulfilment.
type DeliveryDispatcher interface {
	Dispatch(ctx context.Context, quote *domain.DeliveryQuote) (*DeliveryDispatch, error)
	Status(ctx context.Context, deliveryID string) (*DeliveryDispatch, error)
	Cancel(ctx context.Context, deliveryID string) (*DeliveryDispatch, error)
}

// IdempotencyStore caches responses for mutating requests keyed by the
// Idempotency-Key header.
type IdempotencyStore interface {
	// CheckAndSet atomically checks whether key exists, claiming it when
	// absent. It returns (true, cached) for a key that was already claimed.
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update stores the final response for a claimed key.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Forget releases a claimed key whose request failed, so a later
	// retry can run.
	Forget(ctx context.Context, key string) error
}
