package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aufgabe-dev/aufgabe/pkg/api"
	"github.com/aufgabe-dev/aufgabe/pkg/observability"
	"github.com/aufgabe-dev/aufgabe/pkg/transport"
)

// TokenHeader is the response header carrying freshly issued tokens.
// Tokens ride in a header rather than the body so that logs capturing
// response bodies never see credential-adjacent material.
const TokenHeader = "X-Auth-Token"

// Handler serves the account and session endpoints.
type Handler struct {
	svc        *Service
	validation api.ValidationConfig
}

// NewHandler creates the auth HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{
		svc:        svc,
		validation: api.DefaultValidationConfig(),
	}
}

// Register installs the handler's routes on the mux. Logout and Me sit
// behind the auth middleware; registration and login do not.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/accounts", h.handleRegister)
	mux.HandleFunc("POST /v1/auth/login", h.handleLogin)
	mux.HandleFunc("POST /v1/auth/logout", h.handleLogout)
	mux.HandleFunc("GET /v1/me", h.handleMe)
}

// handleRegister handles POST /v1/accounts. On success the new account is
// returned with 201 and a fresh token in the X-Auth-Token header.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		transport.WriteAPIError(w, api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()))
		return
	}

	if verr := api.ValidateRegisterRequest(&req, h.validation); verr != nil {
		transport.WriteAPIError(w, verr)
		return
	}

	acct, token, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		observability.AuthAttemptsTotal.WithLabelValues("register", "failure").Inc()
		if errors.Is(err, ErrDuplicateEmail) {
			transport.WriteAPIError(w, api.NewConflictError("email", "email already registered"))
			return
		}
		transport.WriteAPIError(w, api.NewServerError("could not create account"))
		return
	}
	observability.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()

	w.Header().Set(TokenHeader, token)
	transport.WriteJSON(w, http.StatusCreated, acct)
}

// handleLogin handles POST /v1/auth/login. Unknown email and wrong password
// produce the identical response.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		transport.WriteAPIError(w, api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()))
		return
	}

	if verr := api.ValidateLoginRequest(&req); verr != nil {
		transport.WriteAPIError(w, verr)
		return
	}

	acct, token, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		observability.AuthAttemptsTotal.WithLabelValues("login", "failure").Inc()
		if errors.Is(err, ErrInvalidCredentials) {
			transport.WriteAPIError(w, api.NewUnauthorizedError("invalid credentials"))
			return
		}
		transport.WriteAPIError(w, api.NewServerError("could not log in"))
		return
	}
	observability.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()

	w.Header().Set(TokenHeader, token)
	transport.WriteJSON(w, http.StatusOK, acct)
}

// handleLogout handles POST /v1/auth/logout. It revokes the token the
// request authenticated with. Idempotent; always 204 on success.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	acct := AccountFromContext(r.Context())
	token := TokenFromContext(r.Context())
	if acct == nil || token == "" {
		transport.WriteAPIError(w, api.NewUnauthorizedError("authentication required"))
		return
	}

	if err := h.svc.Revoke(r.Context(), acct, token); err != nil {
		transport.WriteAPIError(w, api.NewServerError("could not log out"))
		return
	}
	observability.TokensRevokedTotal.Inc()

	w.WriteHeader(http.StatusNoContent)
}

// handleMe handles GET /v1/me, returning the caller's own account.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	acct := AccountFromContext(r.Context())
	if acct == nil {
		transport.WriteAPIError(w, api.NewUnauthorizedError("authentication required"))
		return
	}
	transport.WriteJSON(w, http.StatusOK, acct)
}
