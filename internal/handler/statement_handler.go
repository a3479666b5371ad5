package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"checking-account-api/internal/domain"
	"checking-account-api/internal/errors"
	"checking-account-api/internal/service"
)

type StatementHandler struct {
	statementService *service.StatementService
}

func NewStatementHandler(statementService *service.StatementService) *StatementHandler {
	return &StatementHandler{
		statementService: statementService,
	}
}

type EntryRequest struct {
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

type BalanceResponse struct {
	AccountID uuid.UUID       `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

func (h *StatementHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.handleEntry(w, r, h.statementService.Deposit)
}

func (h *StatementHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.handleEntry(w, r, h.statementService.Withdraw)
}

func (h *StatementHandler) Pix(w http.ResponseWriter, r *http.Request) {
	h.handleEntry(w, r, h.statementService.Pix)
}

func (h *StatementHandler) Ted(w http.ResponseWriter, r *http.Request) {
	h.handleEntry(w, r, h.statementService.Ted)
}

// handleEntry decodes the shared request shape and funnels into the
// given ledger operation.
func (h *StatementHandler) handleEntry(
	w http.ResponseWriter,
	r *http.Request,
	op func(accountID uuid.UUID, amount decimal.Decimal, description string) (*domain.StatementEntry, error),
) {
	accountID, err := accountIDFromRequest(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidAmount, "invalid amount format").WithDetails(err.Error()))
		return
	}

	entry, err := op(accountID, amount, req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

func (h *StatementHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromRequest(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	balance, err := h.statementService.GetBalance(accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceResponse{AccountID: accountID, Balance: balance})
}

func (h *StatementHandler) GetStatement(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromRequest(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	entries, err := h.statementService.GetStatement(accountID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *StatementHandler) GetByPeriod(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromRequest(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid start date, expected RFC 3339").WithDetails(err.Error()))
		return
	}

	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid end date, expected RFC 3339").WithDetails(err.Error()))
		return
	}

	entries, err := h.statementService.GetByPeriod(accountID, start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *StatementHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountIDFromRequest(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	entryID, err := uuid.Parse(mux.Vars(r)["entryId"])
	if err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid entry id"))
		return
	}

	entry, err := h.statementService.GetEntry(accountID, entryID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}
