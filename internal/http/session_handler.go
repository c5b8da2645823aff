package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

type Session interface {
	Current() domain.Identity
	Logout(ctx context.Context) error
}

type Auth interface {
	Login(ctx context.Context, in auth.LoginInput) (domain.Identity, error)
	Signup(ctx context.Context, in auth.SignupInput) (domain.Identity, error)
}

type SessionHandler struct {
	handler
	session Session
	auth    Auth
}

func NewSessionHandler(session Session, auth Auth, h handler) *SessionHandler {
	return &SessionHandler{handler: h, session: session, auth: auth}
}

// SessionResponse never includes the token.
type SessionResponse struct {
	LoggedIn bool           `json:"loggedIn"`
	IsAdmin  bool           `json:"isAdmin"`
	Profile  domain.Profile `json:"profile"`
}

func sessionResponse(id domain.Identity) SessionResponse {
	return SessionResponse{
		LoggedIn: !id.IsGuest(),
		IsAdmin:  id.IsAdmin(),
		Profile:  id.Profile,
	}
}

// GET /api/session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, sessionResponse(h.session.Current()))
}

// POST /api/login
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	var req auth.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	id, err := h.auth.Login(ctx, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, sessionResponse(id))
}

// POST /api/signup
func (h *SessionHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	var req auth.SignupInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	id, err := h.auth.Signup(ctx, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, sessionResponse(id))
}

// POST /api/logout always ends on the guest identity.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	if err := h.session.Logout(ctx); err != nil {
		h.log.WarnContext(ctx, "logout left stale data", slog.String("error", err.Error()))
	}
	h.respondJSON(w, http.StatusOK, sessionResponse(h.session.Current()))
}
