package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/agentpay/agentledger/internal/adapter/http/dto"
	"github.com/agentpay/agentledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Success: false,
		Error:   message,
		Message: details,
	})
}

// writePaymentRequired writes the 402 envelope for an insufficient balance.
func writePaymentRequired(w http.ResponseWriter, required, available decimal.Decimal, message string) {
	writeJSON(w, http.StatusPaymentRequired, dto.PaymentRequiredResponse{
		Success:   false,
		Error:     "402 Payment Required",
		Message:   message,
		Required:  required,
		Available: available,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrQuoteNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrQuoteExpired):
		return http.StatusGone
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrAccountRequired):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownOperation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDependencyUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
