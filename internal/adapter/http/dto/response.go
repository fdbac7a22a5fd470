package dto

import (
	"github.com/shopspring/decimal"

	"github.com/agentpay/agentledger/internal/usecase"
)

// ErrorResponse is the generic failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// BalanceResponse reports an account balance.
type BalanceResponse struct {
	Account  string          `json:"account"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
}

// DepositResponse acknowledges a credit.
type DepositResponse struct {
	Success    bool            `json:"success"`
	Account    string          `json:"account"`
	Deposited  decimal.Decimal `json:"deposited"`
	NewBalance decimal.Decimal `json:"newBalance"`
	Currency   string          `json:"currency"`
	Message    string          `json:"message,omitempty"`
}

// SpendResponse acknowledges a raw debit.
type SpendResponse struct {
	Success     bool            `json:"success"`
	Account     string          `json:"account"`
	Spent       decimal.Decimal `json:"spent"`
	NewBalance  decimal.Decimal `json:"newBalance"`
	Currency    string          `json:"currency"`
	Description string          `json:"description,omitempty"`
	Message     string          `json:"message,omitempty"`
}

// PaymentRequiredResponse is returned with HTTP 402 when a balance cannot
// cover a requested spend or charge.
type PaymentRequiredResponse struct {
	Success   bool            `json:"success"`
	Error     string          `json:"error"`
	Message   string          `json:"message"`
	Required  decimal.Decimal `json:"required"`
	Available decimal.Decimal `json:"available"`

	// Result is set when the action ran but the fee could not be
	// collected; the caller keeps the outcome.
	Result map[string]any `json:"result,omitempty"`
}

// ChargeResponse reports the outcome of a metered operation.
type ChargeResponse struct {
	Success    bool            `json:"success"`
	Operation  string          `json:"operation"`
	Cost       decimal.Decimal `json:"cost"`
	NewBalance decimal.Decimal `json:"newBalance"`
	Currency   string          `json:"currency"`
	Result     map[string]any  `json:"result,omitempty"`
	Message    string          `json:"message,omitempty"`
}

// ChargeResponseFrom builds the success envelope for a settled charge.
func ChargeResponseFrom(res *usecase.ChargeResult, currency string) ChargeResponse {
	return ChargeResponse{
		Success:    true,
		Operation:  string(res.Operation),
		Cost:       res.Cost,
		NewBalance: res.NewBalance,
		Currency:   currency,
		Result:     res.Payload,
		Message:    res.Message,
	}
}

// PaymentRequiredFrom builds the 402 envelope for a rejected charge.
func PaymentRequiredFrom(res *usecase.ChargeResult) PaymentRequiredResponse {
	return PaymentRequiredResponse{
		Success:   false,
		Error:     res.Error,
		Message:   res.Message,
		Required:  res.Required,
		Available: res.Available,
		Result:    res.Payload,
	}
}

// QuoteResponse reports a pending delivery quote.
type QuoteResponse struct {
	Success          bool            `json:"success"`
	QuoteID          string          `json:"quoteId"`
	EstimatedFee     decimal.Decimal `json:"estimatedFee"`
	Currency         string          `json:"currency"`
	ExpiresInSeconds int64           `json:"expiresInSeconds"`
	DropoffAddress   string          `json:"dropoffAddress"`
	Message          string          `json:"message,omitempty"`
}

// DeliveryStatusResponse reports the state of a dispatched delivery.
type DeliveryStatusResponse struct {
	Success              bool   `json:"success"`
	DeliveryID           string `json:"deliveryId"`
	Status               string `json:"status"`
	TrackingURL          string `json:"trackingUrl,omitempty"`
	EstimatedPickupTime  string `json:"estimatedPickupTime,omitempty"`
	EstimatedDropoffTime string `json:"estimatedDropoffTime,omitempty"`
	SupportReference     string `json:"supportReference,omitempty"`
	Simulated            bool   `json:"simulated,omitempty"`
}

// DeliveryStatusFrom builds the status envelope from a dispatch record.
func DeliveryStatusFrom(d *usecase.DeliveryDispatch) DeliveryStatusResponse {
	return DeliveryStatusResponse{
		Success:              true,
		DeliveryID:           d.DeliveryID,
		Status:               d.Status,
		TrackingURL:          d.TrackingURL,
		EstimatedPickupTime:  d.EstimatedPickupTime,
		EstimatedDropoffTime: d.EstimatedDropoffTime,
		SupportReference:     d.SupportReference,
		Simulated:            d.Simulated,
	}
}

// HealthResponse reports process liveness or readiness.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
