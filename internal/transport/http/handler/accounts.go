package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linkup-api/internal/application/account"
	"github.com/linkup-api/internal/application/auth"
	"github.com/linkup-api/internal/domain"
	"github.com/linkup-api/internal/pkg/validate"
	"github.com/linkup-api/internal/transport/http/middleware"
)

// AccountHandler handles registration and account-view endpoints.
type AccountHandler struct {
	authSvc    auth.Service
	accountSvc account.Service
}

func NewAccountHandler(authSvc auth.Service, accountSvc account.Service) *AccountHandler {
	return &AccountHandler{authSvc: authSvc, accountSvc: accountSvc}
}

// Register creates an account and responds 201 even when the verification
// email could not be delivered; the client drives the resend flow.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	a, err := h.authSvc.Register(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, MessageEnvelope{
		Message:   "account created; verify your email with the code we sent",
		AccountID: a.AccountID,
	})
}

func (h *AccountHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	a, err := h.accountSvc.Get(r.Context(), claims.AccountID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.accountSvc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
