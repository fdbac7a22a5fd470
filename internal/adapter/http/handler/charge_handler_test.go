package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/agentpay/agentledger/internal/adapter/http/dto"
	"github.com/agentpay/agentledger/internal/domain"
	"github.com/agentpay/agentledger/internal/usecase"
)

type chargeServiceStub struct {
	chargeFn func(ctx context.Context, accountID string, op usecase.Operation, params usecase.ChargeParams) (*usecase.ChargeResult, error)
}

func (s *chargeServiceStub) ChargeFor(ctx context.Context, accountID string, op usecase.Operation, params usecase.ChargeParams) (*usecase.ChargeResult, error) {
	return s.chargeFn(ctx, accountID, op, params)
}

func TestChargeHandler_Charge_Success(t *testing.T) {
	var capturedAccount string
	var capturedOp usecase.Operation
	h := NewChargeHandler(&chargeServiceStub{
		chargeFn: func(ctx context.Context, accountID string, op usecase.Operation, params usecase.ChargeParams) (*usecase.ChargeResult, error) {
			capturedAccount = accountID
			capturedOp = op
			return &usecase.ChargeResult{
				Success:    true,
				Operation:  op,
				Cost:       decimal.RequireFromString("0.5"),
				NewBalance: decimal.RequireFromString("9.5"),
				Payload:    map[string]any{"query": params.Query},
			}, nil
		},
	}, "USDC", "0xAgentWallet")

	body, _ := json.Marshal(dto.ChargeRequest{
		Operation: "web_search",
		Params:    dto.ChargeParamsRequest{Query: "best ramen nyc"},
	})
	req := httptest.NewRequest(http.MethodPost, "/charges", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Charge(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if capturedAccount != "0xAgentWallet" {
		t.Fatalf("expected default account, got %q", capturedAccount)
	}
	if capturedOp != usecase.OpWebSearch {
		t.Fatalf("expected web_search operation, got %q", capturedOp)
	}

	var resp dto.ChargeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Cost.Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("expected cost 0.5, got %s", resp.Cost)
	}
	if resp.Result["query"] != "best ramen nyc" {
		t.Fatalf("expected payload echoed, got %+v", resp.Result)
	}
}

func TestChargeHandler_Charge_PaymentRequired(t *testing.T) {
	h := NewChargeHandler(&chargeServiceStub{
		chargeFn: func(ctx context.Context, accountID string, op usecase.Operation, params usecase.ChargeParams) (*usecase.ChargeResult, error) {
			return &usecase.ChargeResult{
				Success:   false,
				Operation: op,
				Error:     "402 Payment Required",
				Required:  decimal.RequireFromString("0.5"),
				Available: decimal.Zero,
				Message:   "Insufficient funds.",
			}, nil
		},
	}, "USDC", "0xAgentWallet")

	body, _ := json.Marshal(dto.ChargeRequest{Operation: "web_search"})
	req := httptest.NewRequest(http.MethodPost, "/charges", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Charge(rec, req)

	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", rec.Code)
	}

	var resp dto.PaymentRequiredResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error != "402 Payment Required" {
		t.Fatalf("expected 402 error string, got %q", resp.Error)
	}
}

func TestChargeHandler_Charge_UnknownOperation(t *testing.T) {
	h := NewChargeHandler(&chargeServiceStub{
		chargeFn: func(ctx context.Context, accountID string, op usecase.Operation, params usecase.ChargeParams) (*usecase.ChargeResult, error) {
			return nil, domain.ErrUnknownOperation
		},
	}, "USDC", "0xAgentWallet")

	body, _ := json.Marshal(dto.ChargeRequest{Operation: "teleport"})
	req := httptest.NewRequest(http.MethodPost, "/charges", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Charge(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestChargeHandler_Charge_DependencyUnavailable(t *testing.T) {
	h := NewChargeHandler(&chargeServiceStub{
		chargeFn: func(ctx context.Context, accountID string, op usecase.Operation, params usecase.ChargeParams) (*usecase.ChargeResult, error) {
			return nil, domain.ErrDependencyUnavailable
		},
	}, "USDC", "0xAgentWallet")

	body, _ := json.Marshal(dto.ChargeRequest{Operation: "web_search"})
	req := httptest.NewRequest(http.MethodPost, "/charges", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Charge(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestChargeHandler_Charge_DrainedRaceKeepsResult(t *testing.T) {
	h := NewChargeHandler(&chargeServiceStub{
		chargeFn: func(ctx context.Context, accountID string, op usecase.Operation, params usecase.ChargeParams) (*usecase.ChargeResult, error) {
			// The action ran but a concurrent spend drained the balance
			// before the fee landed: 402 with the outcome attached.
			return &usecase.ChargeResult{
				Success:   false,
				Operation: op,
				Error:     "402 Payment Required",
				Required:  decimal.RequireFromString("0.5"),
				Available: decimal.Zero,
				Payload:   map[string]any{"query": "ramen", "results": []any{}},
			}, nil
		},
	}, "USDC", "0xAgentWallet")

	body, _ := json.Marshal(dto.ChargeRequest{Operation: "web_search"})
	req := httptest.NewRequest(http.MethodPost, "/charges", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Charge(rec, req)

	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", rec.Code)
	}

	var resp dto.PaymentRequiredResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Result["query"] != "ramen" {
		t.Fatalf("expected action outcome in 402 response, got %+v", resp.Result)
	}
}
