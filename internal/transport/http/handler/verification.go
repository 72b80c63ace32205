package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linkup-api/internal/application/auth"
	"github.com/linkup-api/internal/domain"
	"github.com/linkup-api/internal/pkg/validate"
)

// VerificationHandler handles the email / first-login code endpoints.
type VerificationHandler struct {
	svc auth.Service
}

func NewVerificationHandler(svc auth.Service) *VerificationHandler {
	return &VerificationHandler{svc: svc}
}

type verifyCodeRequest struct {
	AccountID string `json:"account_id" validate:"required"`
	Code      string `json:"code" validate:"required,len=6,numeric"`
}

type resendRequest struct {
	AccountID string `json:"account_id" validate:"required"`
}

func (h *VerificationHandler) Action(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "email":
		h.verify(w, r, h.svc.VerifyRegistrationCode)
	case "login":
		h.verify(w, r, h.svc.VerifyLoginCode)
	case "resend":
		var req resendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := validate.Struct(&req); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if err := h.svc.ResendRegistrationCode(r.Context(), req.AccountID); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "verification code sent"})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}

func (h *VerificationHandler) verify(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, accountID, code string) (string, *domain.Account, error)) {
	var req verifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	token, a, err := fn(r.Context(), req.AccountID, req.Code)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Token: token, Account: a})
}
