package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/agentpay/agentledger/internal/domain"
	"github.com/agentpay/agentledger/internal/infrastructure/idgen"
	"github.com/agentpay/agentledger/internal/usecase"
)

func newTestPlacer() *OrderPlacer {
	pricing := usecase.NewPricingPolicy(decimal.RequireFromString(usecase.DefaultTaxRate))
	return NewOrderPlacer(pricing, idgen.NewULIDGenerator(), zerolog.Nop())
}

func TestOrderPlacer_PlaceOrder(t *testing.T) {
	placer := newTestPlacer()

	payload, err := placer.PlaceOrder(context.Background(), usecase.ChargeParams{
		Restaurant: "Thai Basil",
		Items: []domain.OrderItem{
			{Name: "pad thai", Price: decimal.NewFromInt(10), Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	orderID, _ := payload["orderId"].(string)
	if !strings.HasPrefix(orderID, "ORD-") {
		t.Fatalf("unexpected order id %q", orderID)
	}
	if payload["estimatedTime"] != "15-20 minutes (pickup)" {
		t.Fatalf("expected pickup estimate, got %v", payload["estimatedTime"])
	}
	subtotal := payload["subtotal"].(decimal.Decimal)
	if !subtotal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected subtotal 10, got %s", subtotal)
	}
}

func TestOrderPlacer_DeliveryAddressChangesEstimate(t *testing.T) {
	placer := newTestPlacer()

	payload, err := placer.PlaceOrder(context.Background(), usecase.ChargeParams{
		Restaurant:      "Thai Basil",
		DeliveryAddress: "9 Elm St",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload["estimatedTime"] != "30-45 minutes" {
		t.Fatalf("expected delivery estimate, got %v", payload["estimatedTime"])
	}
	if payload["deliveryAddress"] != "9 Elm St" {
		t.Fatalf("expected delivery address, got %v", payload["deliveryAddress"])
	}
}

func TestOrderPlacer_GroceryOrder(t *testing.T) {
	placer := newTestPlacer()

	payload, err := placer.PlaceGroceryOrder(context.Background(), usecase.ChargeParams{
		StoreID:    "gopuff-42",
		ProductIDs: []string{"milk", "eggs"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	orderID, _ := payload["orderId"].(string)
	if !strings.HasPrefix(orderID, "GRO-") {
		t.Fatalf("unexpected order id %q", orderID)
	}
	if payload["storeId"] != "gopuff-42" {
		t.Fatalf("store id not carried: %v", payload["storeId"])
	}
}
