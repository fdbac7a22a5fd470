package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/agentpay/agentledger/internal/domain"
)

func sampleQuote() *domain.DeliveryQuote {
	return &domain.DeliveryQuote{
		ID:                 "quote-1",
		AccountID:          "0xabc",
		PickupAddress:      "1 Main St",
		PickupBusinessName: "Thai Basil",
		PickupPhoneNumber:  "+15551234567",
		DropoffAddress:     "9 Elm St",
		DropoffPhoneNumber: "+15559876543",
		OrderValueCents:    2000,
		TipCents:           200,
	}
}

func TestDoorDashClient_SimulatedWithoutCredentials(t *testing.T) {
	client := NewDoorDashClient("", "", "", nil, zerolog.Nop())

	dispatch, err := client.Dispatch(context.Background(), sampleQuote())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dispatch.Simulated {
		t.Fatal("expected simulated dispatch without credentials")
	}
	if dispatch.Status != "dispatched" {
		t.Fatalf("unexpected status %s", dispatch.Status)
	}
	if !strings.HasPrefix(dispatch.DeliveryID, "delivery-") {
		t.Fatalf("unexpected delivery id %s", dispatch.DeliveryID)
	}
}

func TestDoorDashClient_Dispatch(t *testing.T) {
	secret := base64.StdEncoding.EncodeToString([]byte("signing-secret"))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/deliveries" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}

		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		token, err := jwt.Parse(raw, func(token *jwt.Token) (any, error) {
			return []byte("signing-secret"), nil
		})
		if err != nil || !token.Valid {
			t.Fatalf("invalid jwt: %v", err)
		}
		if token.Header["dd-ver"] != "DD-JWT-V1" {
			t.Fatalf("missing dd-ver header: %v", token.Header)
		}
		claims := token.Claims.(jwt.MapClaims)
		if claims["aud"] != "doordash" || claims["iss"] != "dev-1" || claims["kid"] != "key-1" {
			t.Fatalf("unexpected claims: %v", claims)
		}

		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["order_value"] != float64(2000) {
			t.Fatalf("order value not forwarded: %v", body["order_value"])
		}
		if body["dropoff_business_name"] != "Customer" {
			t.Fatalf("expected default dropoff business name, got %v", body["dropoff_business_name"])
		}

		json.NewEncoder(w).Encode(map[string]any{
			"external_delivery_id":   body["external_delivery_id"],
			"tracking_url":           "https://track.example/d1",
			"delivery_status":        "created",
			"pickup_time_estimated":  "2025-06-01T12:15:00Z",
			"dropoff_time_estimated": "2025-06-01T12:45:00Z",
			"support_reference":      "SR-1",
		})
	}))
	defer server.Close()

	client := NewDoorDashClient("dev-1", "key-1", secret, server.Client(), zerolog.Nop())
	client.baseURL = server.URL

	dispatch, err := client.Dispatch(context.Background(), sampleQuote())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dispatch.Simulated {
		t.Fatal("expected real dispatch")
	}
	if dispatch.TrackingURL != "https://track.example/d1" || dispatch.Status != "created" {
		t.Fatalf("unexpected dispatch: %+v", dispatch)
	}
}

func TestDoorDashClient_DispatchError(t *testing.T) {
	secret := base64.StdEncoding.EncodeToString([]byte("signing-secret"))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":"validation_error"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewDoorDashClient("dev-1", "key-1", secret, server.Client(), zerolog.Nop())
	client.baseURL = server.URL

	if _, err := client.Dispatch(context.Background(), sampleQuote()); err == nil {
		t.Fatal("expected error from provider")
	}
}

func TestDoorDashClient_Status(t *testing.T) {
	secret := base64.StdEncoding.EncodeToString([]byte("signing-secret"))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/deliveries/delivery-1" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"external_delivery_id": "delivery-1",
			"delivery_status":      "picked_up",
		})
	}))
	defer server.Close()

	client := NewDoorDashClient("dev-1", "key-1", secret, server.Client(), zerolog.Nop())
	client.baseURL = server.URL

	dispatch, err := client.Status(context.Background(), "delivery-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dispatch.Status != "picked_up" {
		t.Fatalf("unexpected status %s", dispatch.Status)
	}
}
