package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agentpay/agentledger/internal/adapter/http/dto"
	"github.com/agentpay/agentledger/internal/domain"
	"github.com/agentpay/agentledger/internal/usecase"
)

// QuoteService defines the behavior needed by DeliveryHandler.
type QuoteService interface {
	RequestQuote(ctx context.Context, accountID string, trip usecase.TripDetails) (*domain.DeliveryQuote, error)
	ConfirmQuote(ctx context.Context, quoteID string) (*usecase.ChargeResult, error)
	TTL() time.Duration
}

// DeliveryHandler handles delivery quotes, confirmations and tracking.
type DeliveryHandler struct {
	quoteUC        QuoteService
	dispatcher     usecase.DeliveryDispatcher
	currency       string
	defaultAccount string
}

// NewDeliveryHandler creates a new DeliveryHandler.
func NewDeliveryHandler(quoteUC QuoteService, dispatcher usecase.DeliveryDispatcher, currency, defaultAccount string) *DeliveryHandler {
	return &DeliveryHandler{
		quoteUC:        quoteUC,
		dispatcher:     dispatcher,
		currency:       currency,
		defaultAccount: defaultAccount,
	}
}

// Quote creates a pending delivery quote. No funds move until the quote
// is confirmed.
func (h *DeliveryHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req dto.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.PickupAddress == "" || req.DropoffAddress == "" {
		writeError(w, http.StatusBadRequest, "pickup and dropoff addresses are required", "")
		return
	}

	account := req.Account
	if account == "" {
		account = h.defaultAccount
	}

	quote, err := h.quoteUC.RequestQuote(r.Context(), account, req.ToTripDetails())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create quote", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.QuoteResponse{
		Success:          true,
		QuoteID:          quote.ID,
		EstimatedFee:     quote.Fee,
		Currency:         h.currency,
		ExpiresInSeconds: int64(h.quoteUC.TTL().Seconds()),
		DropoffAddress:   quote.DropoffAddress,
		Message:          "Quote created. Confirm within the window to dispatch the delivery.",
	})
}

// Confirm consumes a pending quote and dispatches the delivery. The fee
// is charged only after the dispatch succeeds.
func (h *DeliveryHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	quoteID := chi.URLParam(r, "id")
	if quoteID == "" {
		writeError(w, http.StatusBadRequest, "missing quote ID", "")
		return
	}

	result, err := h.quoteUC.ConfirmQuote(r.Context(), quoteID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to confirm quote", err.Error())
		return
	}

	if !result.Success {
		writeJSON(w, http.StatusPaymentRequired, dto.PaymentRequiredFrom(result))
		return
	}

	writeJSON(w, http.StatusOK, dto.ChargeResponseFrom(result, h.currency))
}

// Status returns the current state of a dispatched delivery.
func (h *DeliveryHandler) Status(w http.ResponseWriter, r *http.Request) {
	deliveryID := chi.URLParam(r, "id")
	if deliveryID == "" {
		writeError(w, http.StatusBadRequest, "missing delivery ID", "")
		return
	}

	dispatch, err := h.dispatcher.Status(r.Context(), deliveryID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to get delivery status", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DeliveryStatusFrom(dispatch))
}

// Cancel cancels a dispatched delivery.
func (h *DeliveryHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	deliveryID := chi.URLParam(r, "id")
	if deliveryID == "" {
		writeError(w, http.StatusBadRequest, "missing delivery ID", "")
		return
	}

	dispatch, err := h.dispatcher.Cancel(r.Context(), deliveryID)
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to cancel delivery", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DeliveryStatusFrom(dispatch))
}
