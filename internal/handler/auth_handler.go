package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"checking-account-api/internal/domain"
	"checking-account-api/internal/errors"
	"checking-account-api/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type AuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

func (h *AuthHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body"))
		return
	}

	user, token, err := h.authService.Authenticate(req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{User: user, Token: token})
}

// RequireAuth rejects requests without a valid bearer token.
func (h *AuthHandler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization := r.Header.Get("Authorization")
		if authorization == "" {
			writeError(w, errors.ErrUnauthorized)
			return
		}

		token := strings.TrimPrefix(authorization, "Bearer ")
		if _, err := h.authService.VerifyToken(token); err != nil {
			writeError(w, errors.ErrUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
