package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/agentpay/agentledger/internal/domain"
	"github.com/agentpay/agentledger/internal/infrastructure/metrics"
)

// PaymentRequiredError is the caller-facing message of a funds rejection.
const PaymentRequiredError = "402 Payment Required"

// ChargeResult is the uniform outcome of a paid operation. Success carries
// the cost, the post-debit balance and the operation payload; rejection
// carries the figures needed to ask the user for a deposit.
type ChargeResult struct {
	Success    bool
	Operation  Operation
	Cost       decimal.Decimal
	NewBalance decimal.Decimal
	Payload    map[string]any
	Message    string

	// Rejection fields, set when Success is false.
	Error     string
	Required  decimal.Decimal
	Available decimal.Decimal
}

// ChargeUseCase orchestrates the check-charge sequence shared by every
// paid tool: resolve the price, reject before any side effect when funds
// are short, run the external action, and debit only after it succeeded.
type ChargeUseCase struct {
	ledger      *LedgerUseCase
	pricing     *PricingPolicy
	tools       ToolRunner
	toolTimeout time.Duration
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

// NewChargeUseCase creates a new ChargeUseCase.
func NewChargeUseCase(ledger *LedgerUseCase, pricing *PricingPolicy, tools ToolRunner, toolTimeout time.Duration, logger zerolog.Logger, m *metrics.Metrics) *ChargeUseCase {
	if toolTimeout <= 0 {
		toolTimeout = DefaultToolTimeout
	}
	return &ChargeUseCase{
		ledger:      ledger,
		pricing:     pricing,
		tools:       tools,
		toolTimeout: toolTimeout,
		logger:      logger,
		metrics:     m,
	}
}

// ChargeFor executes op as a paid operation against accountID.
func (uc *ChargeUseCase) ChargeFor(ctx context.Context, accountID string, op Operation, params ChargeParams) (*ChargeResult, error) {
	price, err := uc.pricing.Price(op, params)
	if err != nil {
		return nil, err
	}
	price = price.Round(2)

	if uc.metrics != nil {
		uc.metrics.ChargesAttempted.WithLabelValues(string(op)).Inc()
	}

	balance, err := uc.ledger.GetBalance(ctx, accountID)
	if err != nil {
		return nil, err
	}

	// The external action must never run before the funds check passes.
	if balance.LessThan(price) {
		if uc.metrics != nil {
			uc.metrics.ChargesRejected.WithLabelValues(string(op), "insufficient_funds").Inc()
		}
		return uc.paymentRequired(op, price, balance), nil
	}

	toolCtx, cancel := context.WithTimeout(ctx, uc.toolTimeout)
	defer cancel()

	payload, err := uc.tools.Run(toolCtx, op, params)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.ChargesRejected.WithLabelValues(string(op), "dependency").Inc()
		}
		uc.logger.Warn().
			Err(err).
			Str("operation", string(op)).
			Msg("paid action failed before charge")
		return nil, fmt.Errorf("%w: %s: %s", domain.ErrDependencyUnavailable, op, err)
	}

	// Debit after the side effect succeeded so a failed action is never
	// charged. A concurrent spend can still drain the account between the
	// check and here; the store's atomic debit is the final arbiter.
	newBalance, err := uc.ledger.Debit(ctx, accountID, price)
	if err != nil {
		if ife, ok := domain.IsInsufficientFunds(err); ok {
			uc.logger.Warn().
				Str("operation", string(op)).
				Str("account", accountID).
				Msg("balance drained by concurrent spend, action not charged")
			result := uc.paymentRequired(op, ife.Required, ife.Available)
			result.Payload = payload
			return result, nil
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ChargesSettled.WithLabelValues(string(op)).Inc()
		cost, _ := price.Float64()
		uc.metrics.ChargeAmount.Observe(cost)
	}

	return &ChargeResult{
		Success:    true,
		Operation:  op,
		Cost:       price,
		NewBalance: newBalance,
		Payload:    payload,
		Message: fmt.Sprintf("Charged %s %s for %s. New balance: %s %s",
			price, uc.ledger.Currency(), op, newBalance, uc.ledger.Currency()),
	}, nil
}

func (uc *ChargeUseCase) paymentRequired(op Operation, required, available decimal.Decimal) *ChargeResult {
	return &ChargeResult{
		Success:   false,
		Operation: op,
		Error:     PaymentRequiredError,
		Required:  required,
		Available: available,
		Message: fmt.Sprintf("Insufficient funds. %s costs %s %s, but you only have %s %s.",
			op, required, uc.ledger.Currency(), available, uc.ledger.Currency()),
	}
}
