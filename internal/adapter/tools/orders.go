package tools

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentpay/agentledger/internal/usecase"
)

// OrderPlacer simulates order placement the way the sandbox deployment
// does: orders are acknowledged with an id and an estimate, and grocery
// orders hand back a payment link the provider settles outside the
// ledger.
type OrderPlacer struct {
	pricing *usecase.PricingPolicy
	idGen   usecase.IDGenerator
	logger  zerolog.Logger
}

// NewOrderPlacer creates a new OrderPlacer.
func NewOrderPlacer(pricing *usecase.PricingPolicy, idGen usecase.IDGenerator, logger zerolog.Logger) *OrderPlacer {
	return &OrderPlacer{
		pricing: pricing,
		idGen:   idGen,
		logger:  logger,
	}
}

// PlaceOrder acknowledges a restaurant order.
func (p *OrderPlacer) PlaceOrder(_ context.Context, params usecase.ChargeParams) (map[string]any, error) {
	orderID := "ORD-" + p.idGen.Generate()
	subtotal, tax, serviceFee := p.pricing.OrderBreakdown(params.Items)

	estimatedTime := "15-20 minutes (pickup)"
	if params.DeliveryAddress != "" {
		estimatedTime = "30-45 minutes"
	}

	items := make([]map[string]any, 0, len(params.Items))
	for _, item := range params.Items {
		items = append(items, map[string]any{
			"name":     item.Name,
			"price":    item.Price,
			"quantity": item.NormalizedQuantity(),
		})
	}

	p.logger.Info().
		Str("order_id", orderID).
		Str("restaurant", params.Restaurant).
		Int("items", len(params.Items)).
		Msg("order placed")

	return map[string]any{
		"orderId":         orderID,
		"restaurant":      params.Restaurant,
		"items":           items,
		"subtotal":        subtotal,
		"tax":             tax,
		"serviceFee":      serviceFee,
		"deliveryAddress": nullable(params.DeliveryAddress),
		"estimatedTime":   estimatedTime,
	}, nil
}

// PlaceGroceryOrder acknowledges a grocery order. Goods are settled
// through the provider's payment link; the ledger meters only the
// service fee.
func (p *OrderPlacer) PlaceGroceryOrder(_ context.Context, params usecase.ChargeParams) (map[string]any, error) {
	orderID := "GRO-" + p.idGen.Generate()

	p.logger.Info().
		Str("order_id", orderID).
		Str("store_id", params.StoreID).
		Int("products", len(params.ProductIDs)).
		Msg("grocery order created")

	return map[string]any{
		"orderId":       orderID,
		"storeId":       params.StoreID,
		"productIds":    params.ProductIDs,
		"paymentLink":   "payment link available via order lookup",
		"estimatedTime": "30 minutes",
	}, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
