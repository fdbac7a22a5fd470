package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Account holds the metered spend balance for a single agent wallet.
// Accounts are created implicitly on first credit or debit with a zero
// balance and are never deleted.
type Account struct {
	ID        string
	Balance   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeAccountID canonicalizes an account key. Wallet addresses are
// case-insensitive, so every store keys on the lowercased form.
func NormalizeAccountID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// ValidateDebit checks whether the account can cover amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if a.Balance.LessThan(amount) {
		return &InsufficientFundsError{
			Available: a.Balance,
			Required:  amount,
		}
	}
	return nil
}

// ApplyDebit returns the balance after a debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns the balance after a credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}
