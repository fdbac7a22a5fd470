package usecase

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/agentpay/agentledger/internal/domain"
)

// Operation names a paid agent action.
type Operation string

const (
	OpWebSearch    Operation = "web_search"
	OpPhoneCall    Operation = "phone_call"
	OpMenuVision   Operation = "menu_vision"
	OpPlaceOrder   Operation = "place_order"
	OpGroceryOrder Operation = "grocery_order"
)

// ChargeParams carries the operation-specific inputs of a charge request.
// Only the fields relevant to the requested operation are read.
type ChargeParams struct {
	// web_search
	Query string

	// phone_call
	PhoneNumber  string
	Purpose      string
	BusinessName string

	// menu_vision
	ImageURL string

	// place_order / grocery_order
	Restaurant      string
	Items           []domain.OrderItem
	TotalCost       decimal.Decimal
	DeliveryAddress string
	StoreID         string
	ProductIDs      []string
}

// PricingPolicy maps an operation and its parameters to a price. Fixed
// prices come from a lookup table; order-like operations add a service fee
// on top of the order cost, deriving it from the items when the caller did
// not supply one.
type PricingPolicy struct {
	fixed      map[Operation]decimal.Decimal
	serviceFee decimal.Decimal
	taxRate    decimal.Decimal
}

// NewPricingPolicy builds the default price table.
func NewPricingPolicy(taxRate decimal.Decimal) *PricingPolicy {
	return &PricingPolicy{
		fixed: map[Operation]decimal.Decimal{
			OpWebSearch:  decimal.RequireFromString(WebSearchPrice),
			OpPhoneCall:  decimal.RequireFromString(PhoneCallPrice),
			OpMenuVision: decimal.RequireFromString(MenuVisionPrice),
		},
		serviceFee: decimal.RequireFromString(OrderServiceFee),
		taxRate:    taxRate,
	}
}

// ServiceFee returns the per-order service fee.
func (p *PricingPolicy) ServiceFee() decimal.Decimal {
	return p.serviceFee
}

// Price resolves the total charge for op given params.
func (p *PricingPolicy) Price(op Operation, params ChargeParams) (decimal.Decimal, error) {
	if price, ok := p.fixed[op]; ok {
		return price, nil
	}

	switch op {
	case OpPlaceOrder:
		return p.OrderTotal(params.Items, params.TotalCost), nil
	case OpGroceryOrder:
		// Grocery orders settle the goods through the provider's payment
		// link; the ledger only meters the service fee.
		return p.serviceFee, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrUnknownOperation, op)
	}
}

// OrderTotal computes orderCost + serviceFee. When the caller supplied a
// positive orderCost it is trusted as-is; otherwise the cost is derived as
// subtotal plus tax.
func (p *PricingPolicy) OrderTotal(items []domain.OrderItem, orderCost decimal.Decimal) decimal.Decimal {
	if orderCost.IsZero() || orderCost.IsNegative() {
		subtotal := domain.OrderSubtotal(items)
		orderCost = subtotal.Add(subtotal.Mul(p.taxRate))
	}
	return orderCost.Add(p.serviceFee)
}

// OrderBreakdown returns subtotal, tax and service fee for an order
// payload, rounded for display.
func (p *PricingPolicy) OrderBreakdown(items []domain.OrderItem) (subtotal, tax, serviceFee decimal.Decimal) {
	subtotal = domain.OrderSubtotal(items)
	tax = subtotal.Mul(p.taxRate).Round(2)
	return subtotal, tax, p.serviceFee
}
