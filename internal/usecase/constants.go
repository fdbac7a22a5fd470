package usecase

import "time"

const (
	// DefaultQuoteTTL is the confirmation window for a delivery quote.
	DefaultQuoteTTL = 30 * time.Minute

	// DefaultToolTimeout bounds every external tool invocation so a slow
	// dependency can never hang the ledger path.
	DefaultToolTimeout = 30 * time.Second

	// DefaultTaxRate applies when an order arrives without a precomputed
	// total.
	DefaultTaxRate = "0.0875"
)

// Fixed prices and fees, in the ledger's currency unit.
const (
	WebSearchPrice  = "0.5"
	PhoneCallPrice  = "0.1"
	MenuVisionPrice = "0.25"
	OrderServiceFee = "1.0"
	DeliveryBaseFee = "5.99"
)
