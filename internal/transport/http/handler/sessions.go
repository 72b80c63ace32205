package handler

import (
	"encoding/json"
	"net/http"

	"github.com/linkup-api/internal/application/auth"
	"github.com/linkup-api/internal/pkg/validate"
)

// SessionHandler handles login.
type SessionHandler struct {
	svc auth.Service
}

func NewSessionHandler(svc auth.Service) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// Login returns one of three shapes: a session credential for fully
// verified accounts, a 200 "login verification required" for accounts that
// still owe their first-login code, or a 403 for unverified emails.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	result, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	switch result.Pending {
	case auth.PendingEmailVerification:
		writeJSON(w, http.StatusForbidden, AuthEnvelope{
			Error:     "email verification required",
			AccountID: result.Account.AccountID,
		})
	case auth.PendingLoginVerification:
		writeJSON(w, http.StatusOK, AuthEnvelope{
			Message:   "login verification required",
			AccountID: result.Account.AccountID,
		})
	default:
		writeJSON(w, http.StatusOK, AuthEnvelope{Token: result.Token, Account: result.Account})
	}
}
