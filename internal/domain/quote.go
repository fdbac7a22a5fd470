package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DeliveryQuote is a time-boxed, single-use fee estimate for a delivery
// dispatch. It is consumed exactly once by a successful confirmation;
// confirming an expired quote removes it and the caller must re-quote.
type DeliveryQuote struct {
	ID        string
	AccountID string

	PickupAddress      string
	PickupBusinessName string
	PickupPhoneNumber  string
	PickupInstructions string

	DropoffAddress      string
	DropoffBusinessName string
	DropoffPhoneNumber  string
	DropoffInstructions string

	// OrderValueCents and TipCents are kept in minor units, matching what
	// the dispatch API expects on the wire.
	OrderValueCents int64
	TipCents        int64

	Fee       decimal.Decimal
	CreatedAt time.Time
}

// ExpiresAt returns the instant the quote stops being confirmable.
func (q *DeliveryQuote) ExpiresAt(ttl time.Duration) time.Time {
	return q.CreatedAt.Add(ttl)
}

// Expired reports whether the quote is past its confirmation window.
func (q *DeliveryQuote) Expired(now time.Time, ttl time.Duration) bool {
	return now.After(q.ExpiresAt(ttl))
}
