package handler

import (
	"encoding/json"
	"net/http"

	"checking-account-api/internal/errors"
	"checking-account-api/internal/service"
)

type AccountHandler struct {
	accountService *service.AccountService
}

func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

type AccountRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Number string `json:"number"`
}

func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body"))
		return
	}

	account, err := h.accountService.CreateAccount(req.Name, req.Email, req.Number)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, account)
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDFromRequest(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	account, err := h.accountService.GetAccount(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountService.ListAccounts()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, accounts)
}

func (h *AccountHandler) SearchByName(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountService.SearchAccountsByName(r.URL.Query().Get("name"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, accounts)
}

func (h *AccountHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDFromRequest(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var req AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body"))
		return
	}

	account, err := h.accountService.UpdateAccount(id, req.Name, req.Email, req.Number)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := accountIDFromRequest(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := h.accountService.DeleteAccount(id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// VerifyExists guards account-scoped routes: the {id} path variable must
// resolve to a registered checking account before the inner handler runs.
func (h *AccountHandler) VerifyExists(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := accountIDFromRequest(r)
		if err != nil {
			writeError(w, errors.ErrAccountNotFound)
			return
		}

		exists, err := h.accountService.Exists(id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if !exists {
			writeError(w, errors.ErrAccountNotFound)
			return
		}

		next.ServeHTTP(w, r)
	})
}
