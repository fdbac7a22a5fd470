package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Ledger errors
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrAccountRequired = errors.New("account id required")

	// Quote errors
	ErrQuoteNotFound = errors.New("quote not found")
	ErrQuoteExpired  = errors.New("quote expired")

	// Charge errors
	ErrUnknownOperation      = errors.New("unknown operation")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// InsufficientFundsError is returned when a debit would make a balance
// negative. It carries the figures the agent needs to ask for a top-up.
type InsufficientFundsError struct {
	Available decimal.Decimal
	Required  decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: have %s, need %s", e.Available, e.Required)
}

// IsInsufficientFunds reports whether err is an InsufficientFundsError and
// returns it when so.
func IsInsufficientFunds(err error) (*InsufficientFundsError, bool) {
	var ife *InsufficientFundsError
	if errors.As(err, &ife) {
		return ife, true
	}
	return nil, false
}
