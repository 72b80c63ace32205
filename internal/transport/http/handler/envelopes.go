package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/linkup-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper. AccountID is set on
// responses that direct the client into a verification flow.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	AccountID string `json:"account_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// AuthEnvelope wraps responses that may carry a session credential.
// Secret fields on Account are excluded by its json tags.
type AuthEnvelope struct {
	Token     string          `json:"token,omitempty"`
	Account   *domain.Account `json:"account,omitempty"`
	Message   string          `json:"message,omitempty"`
	AccountID string          `json:"account_id,omitempty"`
	Error     string          `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps a domain error to its HTTP status. Unclassified errors
// become 500 with a generic message so infrastructure detail never leaks.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidCode),
		errors.Is(err, domain.ErrCodeExpired),
		errors.Is(err, domain.ErrResetTokenInvalid):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
