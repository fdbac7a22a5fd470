package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/agentpay/agentledger/internal/adapter/http/dto"
	"github.com/agentpay/agentledger/internal/domain"
	"github.com/agentpay/agentledger/internal/usecase"
)

type quoteServiceStub struct {
	requestFn func(ctx context.Context, accountID string, trip usecase.TripDetails) (*domain.DeliveryQuote, error)
	confirmFn func(ctx context.Context, quoteID string) (*usecase.ChargeResult, error)
}

func (s *quoteServiceStub) RequestQuote(ctx context.Context, accountID string, trip usecase.TripDetails) (*domain.DeliveryQuote, error) {
	return s.requestFn(ctx, accountID, trip)
}

func (s *quoteServiceStub) ConfirmQuote(ctx context.Context, quoteID string) (*usecase.ChargeResult, error) {
	return s.confirmFn(ctx, quoteID)
}

func (s *quoteServiceStub) TTL() time.Duration { return 30 * time.Minute }

type dispatcherStub struct {
	statusFn func(ctx context.Context, deliveryID string) (*usecase.DeliveryDispatch, error)
	cancelFn func(ctx context.Context, deliveryID string) (*usecase.DeliveryDispatch, error)
}

func (s *dispatcherStub) Dispatch(ctx context.Context, quote *domain.DeliveryQuote) (*usecase.DeliveryDispatch, error) {
	return nil, errors.New("not used")
}

func (s *dispatcherStub) Status(ctx context.Context, deliveryID string) (*usecase.DeliveryDispatch, error) {
	return s.statusFn(ctx, deliveryID)
}

func (s *dispatcherStub) Cancel(ctx context.Context, deliveryID string) (*usecase.DeliveryDispatch, error) {
	return s.cancelFn(ctx, deliveryID)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestDeliveryHandler_Quote_Success(t *testing.T) {
	h := NewDeliveryHandler(&quoteServiceStub{
		requestFn: func(ctx context.Context, accountID string, trip usecase.TripDetails) (*domain.DeliveryQuote, error) {
			return &domain.DeliveryQuote{
				ID:             "quote-01ABC",
				AccountID:      accountID,
				DropoffAddress: trip.DropoffAddress,
				Fee:            decimal.RequireFromString("7.99"),
			}, nil
		},
	}, &dispatcherStub{}, "USDC", "0xAgentWallet")

	body, _ := json.Marshal(dto.QuoteRequest{
		PickupAddress:  "1 Pickup St",
		DropoffAddress: "2 Dropoff Ave",
		OrderValue:     decimal.RequireFromString("20"),
		TipAmount:      decimal.RequireFromString("2"),
	})
	req := httptest.NewRequest(http.MethodPost, "/deliveries/quotes", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Quote(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.QuoteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.QuoteID != "quote-01ABC" {
		t.Fatalf("expected quote ID, got %q", resp.QuoteID)
	}
	if !resp.EstimatedFee.Equal(decimal.RequireFromString("7.99")) {
		t.Fatalf("expected fee 7.99, got %s", resp.EstimatedFee)
	}
	if resp.ExpiresInSeconds != 1800 {
		t.Fatalf("expected 1800 second window, got %d", resp.ExpiresInSeconds)
	}
}

func TestDeliveryHandler_Quote_MissingAddresses(t *testing.T) {
	h := NewDeliveryHandler(&quoteServiceStub{}, &dispatcherStub{}, "USDC", "0xAgentWallet")

	body, _ := json.Marshal(dto.QuoteRequest{PickupAddress: "1 Pickup St"})
	req := httptest.NewRequest(http.MethodPost, "/deliveries/quotes", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Quote(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDeliveryHandler_Confirm_Success(t *testing.T) {
	h := NewDeliveryHandler(&quoteServiceStub{
		confirmFn: func(ctx context.Context, quoteID string) (*usecase.ChargeResult, error) {
			return &usecase.ChargeResult{
				Success:    true,
				Operation:  "delivery",
				Cost:       decimal.RequireFromString("7.99"),
				NewBalance: decimal.RequireFromString("2.01"),
				Payload:    map[string]any{"deliveryId": "DEL-1"},
			}, nil
		},
	}, &dispatcherStub{}, "USDC", "0xAgentWallet")

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/deliveries/quotes/quote-1/confirm", nil), "id", "quote-1")
	rec := httptest.NewRecorder()

	h.Confirm(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.ChargeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Result["deliveryId"] != "DEL-1" {
		t.Fatalf("expected delivery payload, got %+v", resp.Result)
	}
}

func TestDeliveryHandler_Confirm_NotFound(t *testing.T) {
	h := NewDeliveryHandler(&quoteServiceStub{
		confirmFn: func(ctx context.Context, quoteID string) (*usecase.ChargeResult, error) {
			return nil, domain.ErrQuoteNotFound
		},
	}, &dispatcherStub{}, "USDC", "0xAgentWallet")

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/deliveries/quotes/missing/confirm", nil), "id", "missing")
	rec := httptest.NewRecorder()

	h.Confirm(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDeliveryHandler_Confirm_ExpiredReturns410(t *testing.T) {
	h := NewDeliveryHandler(&quoteServiceStub{
		confirmFn: func(ctx context.Context, quoteID string) (*usecase.ChargeResult, error) {
			return nil, domain.ErrQuoteExpired
		},
	}, &dispatcherStub{}, "USDC", "0xAgentWallet")

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/deliveries/quotes/old/confirm", nil), "id", "old")
	rec := httptest.NewRecorder()

	h.Confirm(rec, req)

	if rec.Code != http.StatusGone {
		t.Fatalf("expected 410, got %d", rec.Code)
	}
}

func TestDeliveryHandler_Confirm_InsufficientFundsReturns402(t *testing.T) {
	h := NewDeliveryHandler(&quoteServiceStub{
		confirmFn: func(ctx context.Context, quoteID string) (*usecase.ChargeResult, error) {
			return &usecase.ChargeResult{
				Success:   false,
				Operation: "delivery",
				Error:     "402 Payment Required",
				Required:  decimal.RequireFromString("7.99"),
				Available: decimal.RequireFromString("1"),
			}, nil
		},
	}, &dispatcherStub{}, "USDC", "0xAgentWallet")

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/deliveries/quotes/quote-1/confirm", nil), "id", "quote-1")
	rec := httptest.NewRecorder()

	h.Confirm(rec, req)

	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", rec.Code)
	}
}

func TestDeliveryHandler_Status(t *testing.T) {
	h := NewDeliveryHandler(&quoteServiceStub{}, &dispatcherStub{
		statusFn: func(ctx context.Context, deliveryID string) (*usecase.DeliveryDispatch, error) {
			return &usecase.DeliveryDispatch{
				DeliveryID:  deliveryID,
				Status:      "enroute_to_dropoff",
				TrackingURL: "https://track.example/DEL-1",
			}, nil
		},
	}, "USDC", "0xAgentWallet")

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/deliveries/DEL-1", nil), "id", "DEL-1")
	rec := httptest.NewRecorder()

	h.Status(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.DeliveryStatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "enroute_to_dropoff" {
		t.Fatalf("expected status echoed, got %q", resp.Status)
	}
}

func TestDeliveryHandler_Cancel(t *testing.T) {
	var cancelled string
	h := NewDeliveryHandler(&quoteServiceStub{}, &dispatcherStub{
		cancelFn: func(ctx context.Context, deliveryID string) (*usecase.DeliveryDispatch, error) {
			cancelled = deliveryID
			return &usecase.DeliveryDispatch{DeliveryID: deliveryID, Status: "cancelled"}, nil
		},
	}, "USDC", "0xAgentWallet")

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/deliveries/DEL-1", nil), "id", "DEL-1")
	rec := httptest.NewRecorder()

	h.Cancel(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if cancelled != "DEL-1" {
		t.Fatalf("expected cancel of DEL-1, got %q", cancelled)
	}
}
