package usecase

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/agentpay/agentledger/internal/domain"
	"github.com/agentpay/agentledger/internal/infrastructure/metrics"
)

// LedgerUseCase mediates every balance mutation. Amount validation lives
// here; the atomicity of check-then-subtract lives in the store.
type LedgerUseCase struct {
	store    BalanceStore
	currency string
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(store BalanceStore, currency string, logger zerolog.Logger, m *metrics.Metrics) *LedgerUseCase {
	return &LedgerUseCase{
		store:    store,
		currency: currency,
		logger:   logger,
		metrics:  m,
	}
}

// Currency returns the display currency balances are denominated in.
func (uc *LedgerUseCase) Currency() string {
	return uc.currency
}

// GetBalance returns the current balance, zero for unseen accounts.
func (uc *LedgerUseCase) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	if accountID == "" {
		return decimal.Zero, domain.ErrAccountRequired
	}
	return uc.store.Balance(ctx, domain.NormalizeAccountID(accountID))
}

// Credit deposits amount into the account and returns the new balance.
func (uc *LedgerUseCase) Credit(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if accountID == "" {
		return decimal.Zero, domain.ErrAccountRequired
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, domain.ErrInvalidAmount
	}

	accountID = domain.NormalizeAccountID(accountID)
	newBalance, err := uc.store.Credit(ctx, accountID, amount)
	if err != nil {
		return decimal.Zero, err
	}

	uc.logger.Info().
		Str("account", accountID).
		Str("amount", amount.String()).
		Str("new_balance", newBalance.String()).
		Msg("balance credited")

	if uc.metrics != nil {
		uc.metrics.CreditsApplied.Inc()
		amt, _ := amount.Float64()
		uc.metrics.CreditAmount.Observe(amt)
		bal, _ := newBalance.Float64()
		uc.metrics.AccountBalance.WithLabelValues(accountID, uc.currency).Set(bal)
	}

	return newBalance, nil
}

// Debit withdraws amount from the account and returns the new balance. On
// insufficient funds the balance is left untouched and the typed error
// carries the available and required figures.
func (uc *LedgerUseCase) Debit(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error) {
	if accountID == "" {
		return decimal.Zero, domain.ErrAccountRequired
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, domain.ErrInvalidAmount
	}

	accountID = domain.NormalizeAccountID(accountID)
	newBalance, err := uc.store.Debit(ctx, accountID, amount)
	if err != nil {
		if _, ok := domain.IsInsufficientFunds(err); ok && uc.metrics != nil {
			uc.metrics.DebitsRejected.Inc()
		}
		return decimal.Zero, err
	}

	uc.logger.Info().
		Str("account", accountID).
		Str("amount", amount.String()).
		Str("new_balance", newBalance.String()).
		Msg("balance debited")

	if uc.metrics != nil {
		uc.metrics.DebitsApplied.Inc()
		amt, _ := amount.Float64()
		uc.metrics.DebitAmount.Observe(amt)
		bal, _ := newBalance.Float64()
		uc.metrics.AccountBalance.WithLabelValues(accountID, uc.currency).Set(bal)
	}

	return newBalance, nil
}

// SetBalance unconditionally overwrites the balance. Demo funding only.
func (uc *LedgerUseCase) SetBalance(ctx context.Context, accountID string, amount decimal.Decimal) error {
	if accountID == "" {
		return domain.ErrAccountRequired
	}

	accountID = domain.NormalizeAccountID(accountID)
	uc.logger.Warn().
		Str("account", accountID).
		Str("amount", amount.String()).
		Msg("balance overwritten")

	return uc.store.SetBalance(ctx, accountID, amount)
}
