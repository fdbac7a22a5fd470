package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/agentpay/agentledger/internal/domain"
	"github.com/agentpay/agentledger/internal/infrastructure/metrics"
)

// TripDetails describe the delivery a quote is requested for. Monetary
// fields are in the ledger's currency unit.
type TripDetails struct {
	PickupAddress      string
	PickupBusinessName string
	PickupPhoneNumber  string
	PickupInstructions string

	DropoffAddress      string
	DropoffBusinessName string
	DropoffPhoneNumber  string
	DropoffInstructions string

	OrderValue decimal.Decimal
	Tip        decimal.Decimal
}

// QuoteUseCase runs the delivery quote/confirm state machine: a quote is
// created with a computed fee, stays confirmable for the TTL, and is
// consumed exactly once by a successful confirmation.
type QuoteUseCase struct {
	quotes     QuoteStore
	ledger     *LedgerUseCase
	dispatcher DeliveryDispatcher
	idGen      IDGenerator
	ttl        time.Duration
	baseFee    decimal.Decimal
	now        func() time.Time
	logger     zerolog.Logger
	metrics    *metrics.Metrics

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewQuoteUseCase creates a new QuoteUseCase.
func NewQuoteUseCase(quotes QuoteStore, ledger *LedgerUseCase, dispatcher DeliveryDispatcher, idGen IDGenerator, ttl time.Duration, logger zerolog.Logger, m *metrics.Metrics) *QuoteUseCase {
	if ttl <= 0 {
		ttl = DefaultQuoteTTL
	}
	return &QuoteUseCase{
		quotes:     quotes,
		ledger:     ledger,
		dispatcher: dispatcher,
		idGen:      idGen,
		ttl:        ttl,
		baseFee:    decimal.RequireFromString(DeliveryBaseFee),
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logger,
		metrics:    m,
		inFlight:   make(map[string]struct{}),
	}
}

// claim marks quoteID as being consumed. It fails when another
// confirmation already holds the quote.
func (uc *QuoteUseCase) claim(quoteID string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if _, busy := uc.inFlight[quoteID]; busy {
		return false
	}
	uc.inFlight[quoteID] = struct{}{}
	return true
}

func (uc *QuoteUseCase) release(quoteID string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.inFlight, quoteID)
}

// TTL returns the confirmation window.
func (uc *QuoteUseCase) TTL() time.Duration {
	return uc.ttl
}

// RequestQuote computes the delivery fee for trip and stores a pending
// quote. No funds move until the quote is confirmed.
func (uc *QuoteUseCase) RequestQuote(ctx context.Context, accountID string, trip TripDetails) (*domain.DeliveryQuote, error) {
	if accountID == "" {
		return nil, domain.ErrAccountRequired
	}

	tip := trip.Tip
	if tip.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	quote := &domain.DeliveryQuote{
		ID:        "quote-" + uc.idGen.Generate(),
		AccountID: domain.NormalizeAccountID(accountID),

		PickupAddress:      trip.PickupAddress,
		PickupBusinessName: trip.PickupBusinessName,
		PickupPhoneNumber:  trip.PickupPhoneNumber,
		PickupInstructions: trip.PickupInstructions,

		DropoffAddress:      trip.DropoffAddress,
		DropoffBusinessName: trip.DropoffBusinessName,
		DropoffPhoneNumber:  trip.DropoffPhoneNumber,
		DropoffInstructions: trip.DropoffInstructions,

		OrderValueCents: trip.OrderValue.Shift(2).Round(0).IntPart(),
		TipCents:        tip.Shift(2).Round(0).IntPart(),

		Fee:       uc.baseFee.Add(tip).Round(2),
		CreatedAt: uc.now(),
	}

	if err := uc.quotes.Put(ctx, quote); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("quote_id", quote.ID).
		Str("fee", quote.Fee.String()).
		Str("dropoff", quote.DropoffAddress).
		Msg("delivery quote created")

	if uc.metrics != nil {
		uc.metrics.QuotesCreated.Inc()
	}

	return quote, nil
}

// ConfirmQuote consumes a pending quote: funds are re-checked against the
// quoted fee, the delivery is dispatched, and only then is the fee
// debited and the quote deleted. A rejected or failed confirmation leaves
// the quote in place so the caller can top up and retry within the
// window.
func (uc *QuoteUseCase) ConfirmQuote(ctx context.Context, quoteID string) (*ChargeResult, error) {
	// Exactly one confirmation may consume a quote. A racing confirm sees
	// the quote as already gone; a failed one releases it for retry.
	if !uc.claim(quoteID) {
		return nil, domain.ErrQuoteNotFound
	}
	defer uc.release(quoteID)

	quote, err := uc.quotes.Get(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if quote.Expired(uc.now(), uc.ttl) {
		_ = uc.quotes.Delete(ctx, quoteID)
		if uc.metrics != nil {
			uc.metrics.QuotesExpired.Inc()
		}
		return nil, domain.ErrQuoteExpired
	}

	balance, err := uc.ledger.GetBalance(ctx, quote.AccountID)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(quote.Fee) {
		if uc.metrics != nil {
			uc.metrics.ChargesRejected.WithLabelValues("delivery", "insufficient_funds").Inc()
		}
		return &ChargeResult{
			Success:   false,
			Operation: "delivery",
			Error:     PaymentRequiredError,
			Required:  quote.Fee,
			Available: balance,
			Message: fmt.Sprintf("Insufficient funds. Delivery costs %s %s, but you only have %s %s.",
				quote.Fee, uc.ledger.Currency(), balance, uc.ledger.Currency()),
		}, nil
	}

	dispatchCtx, cancel := context.WithTimeout(ctx, DefaultToolTimeout)
	defer cancel()

	dispatch, err := uc.dispatcher.Dispatch(dispatchCtx, quote)
	if err != nil {
		uc.logger.Warn().Err(err).Str("quote_id", quoteID).Msg("delivery dispatch failed, quote kept")
		return nil, fmt.Errorf("%w: delivery dispatch: %s", domain.ErrDependencyUnavailable, err)
	}

	newBalance, err := uc.ledger.Debit(ctx, quote.AccountID, quote.Fee)
	if err != nil {
		if ife, ok := domain.IsInsufficientFunds(err); ok {
			return &ChargeResult{
				Success:   false,
				Operation: "delivery",
				Error:     PaymentRequiredError,
				Required:  ife.Required,
				Available: ife.Available,
				Message:   "Balance drained before the delivery fee could be charged.",
			}, nil
		}
		return nil, err
	}

	// Single use: the quote is gone once the dispatch has been paid for.
	if err := uc.quotes.Delete(ctx, quoteID); err != nil {
		uc.logger.Error().Err(err).Str("quote_id", quoteID).Msg("failed to delete consumed quote")
	}

	uc.logger.Info().
		Str("quote_id", quoteID).
		Str("delivery_id", dispatch.DeliveryID).
		Str("fee", quote.Fee.String()).
		Msg("delivery confirmed")

	if uc.metrics != nil {
		uc.metrics.QuotesConfirmed.Inc()
	}

	return &ChargeResult{
		Success:    true,
		Operation:  "delivery",
		Cost:       quote.Fee,
		NewBalance: newBalance,
		Payload: map[string]any{
			"deliveryId":           dispatch.DeliveryID,
			"trackingUrl":          dispatch.TrackingURL,
			"status":               dispatch.Status,
			"estimatedPickupTime":  dispatch.EstimatedPickupTime,
			"estimatedDropoffTime": dispatch.EstimatedDropoffTime,
			"supportReference":     dispatch.SupportReference,
		},
		Message: fmt.Sprintf("Delivery confirmed. Charged %s %s. New balance: %s %s",
			quote.Fee, uc.ledger.Currency(), newBalance, uc.ledger.Currency()),
	}, nil
}
