package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/linkup-api/internal/application/auth"
	"github.com/linkup-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) Register(ctx context.Context, req domain.CreateAccountRequest) (*domain.Account, error) {
	args := m.Called(ctx, req)
	if a, _ := args.Get(0).(*domain.Account); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthSvc) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*auth.LoginResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthSvc) VerifyRegistrationCode(ctx context.Context, accountID, code string) (string, *domain.Account, error) {
	args := m.Called(ctx, accountID, code)
	if a, _ := args.Get(1).(*domain.Account); a != nil {
		return args.String(0), a, args.Error(2)
	}
	return args.String(0), nil, args.Error(2)
}
func (m *mockAuthSvc) VerifyLoginCode(ctx context.Context, accountID, code string) (string, *domain.Account, error) {
	args := m.Called(ctx, accountID, code)
	if a, _ := args.Get(1).(*domain.Account); a != nil {
		return args.String(0), a, args.Error(2)
	}
	return args.String(0), nil, args.Error(2)
}
func (m *mockAuthSvc) ResendRegistrationCode(ctx context.Context, accountID string) error {
	return m.Called(ctx, accountID).Error(0)
}

type mockRecoverySvc struct{ mock.Mock }

func (m *mockRecoverySvc) RequestReset(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
func (m *mockRecoverySvc) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	return m.Called(ctx, resetToken, newPassword).Error(0)
}

// --- helpers ---

func postJSON(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func testRouter(authSvc *mockAuthSvc, recoverySvc *mockRecoverySvc) http.Handler {
	r := chi.NewRouter()
	if authSvc != nil {
		accountH := NewAccountHandler(authSvc, nil)
		sessionH := NewSessionHandler(authSvc)
		verificationH := NewVerificationHandler(authSvc)
		r.Post("/accounts", accountH.Register)
		r.Post("/sessions/login", sessionH.Login)
		r.Post("/verification/{action}", verificationH.Action)
	}
	if recoverySvc != nil {
		recoveryH := NewPasswordRecoveryHandler(recoverySvc)
		r.Post("/password-recovery/{action}", recoveryH.Action)
	}
	return r
}

// --- Register ---

func TestRegister_Created(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Register", mock.Anything, mock.AnythingOfType("domain.CreateAccountRequest")).
		Return(&domain.Account{AccountID: "a1", Email: "alice@example.com"}, nil)

	rr := postJSON(t, testRouter(svc, nil), "/accounts", map[string]string{
		"email": "alice@example.com", "handle": "alice",
		"password": "s3cretpass", "display_name": "Alice",
	})

	assert.Equal(t, http.StatusCreated, rr.Code)
	var env MessageEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, "a1", env.AccountID)
}

func TestRegister_ValidationFailure(t *testing.T) {
	svc := &mockAuthSvc{}
	rr := postJSON(t, testRouter(svc, nil), "/accounts", map[string]string{
		"email": "not-an-email", "handle": "al", "password": "short",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestRegister_Conflict(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Register", mock.Anything, mock.Anything).Return(nil, domain.ErrConflict)

	rr := postJSON(t, testRouter(svc, nil), "/accounts", map[string]string{
		"email": "alice@example.com", "handle": "alice",
		"password": "s3cretpass", "display_name": "Alice",
	})

	assert.Equal(t, http.StatusConflict, rr.Code)
}

// --- Login ---

func TestLogin_FullyVerified_ReturnsCredential(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Login", mock.Anything, mock.Anything).Return(&auth.LoginResult{
		Token:   "tok",
		Account: &domain.Account{AccountID: "a1"},
	}, nil)

	rr := postJSON(t, testRouter(svc, nil), "/sessions/login", map[string]string{
		"email": "alice@example.com", "password": "s3cretpass",
	})

	assert.Equal(t, http.StatusOK, rr.Code)
	var env AuthEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, "tok", env.Token)
}

func TestLogin_PendingEmailVerification_Forbidden(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Login", mock.Anything, mock.Anything).Return(&auth.LoginResult{
		Account: &domain.Account{AccountID: "a1"},
		Pending: auth.PendingEmailVerification,
	}, nil)

	rr := postJSON(t, testRouter(svc, nil), "/sessions/login", map[string]string{
		"email": "alice@example.com", "password": "s3cretpass",
	})

	assert.Equal(t, http.StatusForbidden, rr.Code)
	var env AuthEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, "a1", env.AccountID)
	assert.Empty(t, env.Token)
}

func TestLogin_PendingLoginVerification_NoCredential(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Login", mock.Anything, mock.Anything).Return(&auth.LoginResult{
		Account: &domain.Account{AccountID: "a1"},
		Pending: auth.PendingLoginVerification,
	}, nil)

	rr := postJSON(t, testRouter(svc, nil), "/sessions/login", map[string]string{
		"email": "alice@example.com", "password": "s3cretpass",
	})

	assert.Equal(t, http.StatusOK, rr.Code)
	var env AuthEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, "a1", env.AccountID)
	assert.Empty(t, env.Token)
	assert.Equal(t, "login verification required", env.Message)
}

func TestLogin_BadCredentials_Unauthorized(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("Login", mock.Anything, mock.Anything).Return(nil, domain.ErrUnauthorized)

	rr := postJSON(t, testRouter(svc, nil), "/sessions/login", map[string]string{
		"email": "alice@example.com", "password": "wrong-pass",
	})

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

// --- Verification ---

func TestVerification_Email_ReturnsCredential(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("VerifyRegistrationCode", mock.Anything, "a1", "123456").
		Return("tok", &domain.Account{AccountID: "a1", EmailVerified: true}, nil)

	rr := postJSON(t, testRouter(svc, nil), "/verification/email", map[string]string{
		"account_id": "a1", "code": "123456",
	})

	assert.Equal(t, http.StatusOK, rr.Code)
	var env AuthEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, "tok", env.Token)
}

func TestVerification_InvalidCode(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("VerifyLoginCode", mock.Anything, "a1", "000000").
		Return("", nil, domain.ErrInvalidCode)

	rr := postJSON(t, testRouter(svc, nil), "/verification/login", map[string]string{
		"account_id": "a1", "code": "000000",
	})

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestVerification_MalformedCodeRejectedBeforeService(t *testing.T) {
	svc := &mockAuthSvc{}
	rr := postJSON(t, testRouter(svc, nil), "/verification/email", map[string]string{
		"account_id": "a1", "code": "12ab56",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	svc.AssertNotCalled(t, "VerifyRegistrationCode", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerification_Resend_AlreadyVerified(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("ResendRegistrationCode", mock.Anything, "a1").Return(domain.ErrConflict)

	rr := postJSON(t, testRouter(svc, nil), "/verification/resend", map[string]string{
		"account_id": "a1",
	})

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestVerification_UnknownAction(t *testing.T) {
	rr := postJSON(t, testRouter(&mockAuthSvc{}, nil), "/verification/bogus", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// --- Password recovery ---

func TestPasswordRecovery_Request_IdenticalShapeForAnyEmail(t *testing.T) {
	svc := &mockRecoverySvc{}
	svc.On("RequestReset", mock.Anything, "known@example.com").Return(nil)
	svc.On("RequestReset", mock.Anything, "ghost@example.com").Return(nil)

	h := testRouter(nil, svc)
	known := postJSON(t, h, "/password-recovery/request", map[string]string{"email": "known@example.com"})
	ghost := postJSON(t, h, "/password-recovery/request", map[string]string{"email": "ghost@example.com"})

	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, http.StatusOK, ghost.Code)
	// Enumeration resistance: byte-identical responses.
	assert.Equal(t, known.Body.String(), ghost.Body.String())
}

func TestPasswordRecovery_Reset_InvalidToken(t *testing.T) {
	svc := &mockRecoverySvc{}
	svc.On("ResetPassword", mock.Anything, "tok", "newpassword1").Return(domain.ErrResetTokenInvalid)

	rr := postJSON(t, testRouter(nil, svc), "/password-recovery/reset", map[string]string{
		"token": "tok", "new_password": "newpassword1",
	})

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestPasswordRecovery_Reset_OK(t *testing.T) {
	svc := &mockRecoverySvc{}
	svc.On("ResetPassword", mock.Anything, "tok", "newpassword1").Return(nil)

	rr := postJSON(t, testRouter(nil, svc), "/password-recovery/reset", map[string]string{
		"token": "tok", "new_password": "newpassword1",
	})

	assert.Equal(t, http.StatusOK, rr.Code)
}
