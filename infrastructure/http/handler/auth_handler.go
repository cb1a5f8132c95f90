package handler

import (
	"encoding/json"
	"net/http"

	"github.com/agrisync/agrisync/application/port/inbound"
	"github.com/agrisync/agrisync/infrastructure/http/response"
	"github.com/agrisync/agrisync/infrastructure/http/validator"
)

type AuthHandler struct {
	sessions inbound.SessionService
}

func NewAuthHandler(sessions inbound.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// Offline requests verification against the stored digest instead of
	// the auth backend.
	Offline bool `json:"offline"`
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if !validator.ValidateEmail(req.Email) {
		response.UnprocessableEntity(w, "Invalid email format")
		return
	}
	if !validator.ValidateRequired(req.Password) {
		response.UnprocessableEntity(w, "Password is required")
		return
	}

	var (
		status *inbound.SessionStatus
		err    error
	)
	if req.Offline {
		status, err = h.sessions.OfflineSignIn(r.Context(), req.Email, req.Password)
	} else {
		status, err = h.sessions.SignIn(r.Context(), req.Email, req.Password)
	}
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Signed in", status)
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SignOut(r.Context()); err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Signed out", nil)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.RefreshSession(r.Context()); err != nil {
		response.FromError(w, err)
		return
	}
	status := h.sessions.Status()
	response.Success(w, http.StatusOK, "Session refreshed", status)
}

func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	status := h.sessions.Status()
	response.Success(w, http.StatusOK, "Session status", status)
}
