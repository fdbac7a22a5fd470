package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/agentpay/agentledger/internal/adapter/http/dto"
	"github.com/agentpay/agentledger/internal/domain"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error)
	Credit(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error)
	Debit(ctx context.Context, accountID string, amount decimal.Decimal) (decimal.Decimal, error)
	Currency() string
}

// LedgerHandler handles balance, deposit and spend requests. Requests
// without an explicit account are applied to the configured agent wallet.
type LedgerHandler struct {
	ledgerUC       LedgerService
	defaultAccount string
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService, defaultAccount string) *LedgerHandler {
	return &LedgerHandler{
		ledgerUC:       ledgerUC,
		defaultAccount: defaultAccount,
	}
}

func (h *LedgerHandler) account(requested string) string {
	if requested != "" {
		return requested
	}
	return h.defaultAccount
}

// GetBalance returns the current balance of an account.
func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	account := h.account(r.URL.Query().Get("account"))

	balance, err := h.ledgerUC.GetBalance(r.Context(), account)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		Account:  domain.NormalizeAccountID(account),
		Balance:  balance,
		Currency: h.ledgerUC.Currency(),
	})
}

// Deposit credits an account.
func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account := h.account(req.Account)
	if account == "" {
		account = req.UserWallet
	}

	newBalance, err := h.ledgerUC.Credit(r.Context(), account, req.Amount)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to deposit", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.DepositResponse{
		Success:    true,
		Account:    domain.NormalizeAccountID(account),
		Deposited:  req.Amount,
		NewBalance: newBalance,
		Currency:   h.ledgerUC.Currency(),
		Message: fmt.Sprintf("Deposited %s %s. New balance: %s %s",
			req.Amount, h.ledgerUC.Currency(), newBalance, h.ledgerUC.Currency()),
	})
}

// Fund reports the deposit target on GET and behaves like Deposit on POST.
func (h *LedgerHandler) Fund(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		account := h.account(r.URL.Query().Get("account"))
		balance, err := h.ledgerUC.GetBalance(r.Context(), account)
		if err != nil {
			writeError(w, mapDomainError(err), "failed to get balance", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, dto.BalanceResponse{
			Account:  domain.NormalizeAccountID(account),
			Balance:  balance,
			Currency: h.ledgerUC.Currency(),
		})
		return
	}

	h.Deposit(w, r)
}

// Spend debits an account without running a metered operation.
func (h *LedgerHandler) Spend(w http.ResponseWriter, r *http.Request) {
	var req dto.SpendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account := h.account(req.Account)

	newBalance, err := h.ledgerUC.Debit(r.Context(), account, req.Amount)
	if err != nil {
		if ife, ok := domain.IsInsufficientFunds(err); ok {
			writePaymentRequired(w, ife.Required, ife.Available,
				fmt.Sprintf("Insufficient funds. Required %s %s, available %s %s.",
					ife.Required, h.ledgerUC.Currency(), ife.Available, h.ledgerUC.Currency()))
			return
		}
		writeError(w, mapDomainError(err), "failed to spend", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SpendResponse{
		Success:     true,
		Account:     domain.NormalizeAccountID(account),
		Spent:       req.Amount,
		NewBalance:  newBalance,
		Currency:    h.ledgerUC.Currency(),
		Description: req.Description,
		Message: fmt.Sprintf("Spent %s %s. New balance: %s %s",
			req.Amount, h.ledgerUC.Currency(), newBalance, h.ledgerUC.Currency()),
	})
}
