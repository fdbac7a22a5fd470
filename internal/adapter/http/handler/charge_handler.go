package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/agentpay/agentledger/internal/adapter/http/dto"
	"github.com/agentpay/agentledger/internal/usecase"
)

// ChargeService defines the behavior needed by ChargeHandler.
type ChargeService interface {
	ChargeFor(ctx context.Context, accountID string, op usecase.Operation, params usecase.ChargeParams) (*usecase.ChargeResult, error)
}

// ChargeHandler executes metered operations against an account balance.
type ChargeHandler struct {
	chargeUC       ChargeService
	currency       string
	defaultAccount string
}

// NewChargeHandler creates a new ChargeHandler.
func NewChargeHandler(chargeUC ChargeService, currency, defaultAccount string) *ChargeHandler {
	return &ChargeHandler{
		chargeUC:       chargeUC,
		currency:       currency,
		defaultAccount: defaultAccount,
	}
}

// Charge runs a paid operation: the fee is checked up front, the
// operation side effect runs, and the fee is debited once it succeeds.
func (h *ChargeHandler) Charge(w http.ResponseWriter, r *http.Request) {
	var req dto.ChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account := req.Account
	if account == "" {
		account = h.defaultAccount
	}

	result, err := h.chargeUC.ChargeFor(r.Context(), account, usecase.Operation(req.Operation), req.Params.ToUseCaseParams())
	if err != nil {
		writeError(w, mapDomainError(err), "charge failed", err.Error())
		return
	}

	if !result.Success {
		writeJSON(w, http.StatusPaymentRequired, dto.PaymentRequiredFrom(result))
		return
	}

	writeJSON(w, http.StatusOK, dto.ChargeResponseFrom(result, h.currency))
}
