package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/leafmark/leafmark/internal/sync/service"
	"github.com/leafmark/leafmark/pkg/httpx"
	"github.com/leafmark/leafmark/pkg/slogx"
)

type RegisterHandler struct {
	CredentialService *service.CredentialService
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerResponse struct {
	Username string `json:"username"`
}

// ServeHTTP creates a new account from a JSON username/password body.
// Registration is the one operation that bypasses credential checks.
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest,
			"invalid_request", "Request body must be JSON with username and password")
		return
	}

	user, err := h.CredentialService.Register(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRegistration):
			httpx.WriteError(w, http.StatusBadRequest,
				"invalid_request", "username and password are required")
		case errors.Is(err, service.ErrUsernameTaken):
			httpx.WriteError(w, http.StatusConflict,
				"already_registered", "Username is already registered")
		default:
			log.Error("failed to register user", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError,
				"server_error", "Failed to register user")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, registerResponse{Username: user.Username})
}
