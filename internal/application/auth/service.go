package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/linkup-api/internal/domain"
	"github.com/linkup-api/internal/pkg/id"
	"github.com/linkup-api/internal/pkg/otp"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PendingStep names the verification step that blocks session issuance.
type PendingStep string

const (
	PendingEmailVerification PendingStep = "email_verification"
	PendingLoginVerification PendingStep = "login_verification"
)

// LoginResult carries either a session credential or the pending step the
// client must complete. Token is empty whenever Pending is set.
type LoginResult struct {
	Token   string
	Account *domain.Account
	Pending PendingStep
}

type Service interface {
	Register(ctx context.Context, req domain.CreateAccountRequest) (*domain.Account, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	VerifyRegistrationCode(ctx context.Context, accountID, code string) (token string, account *domain.Account, err error)
	VerifyLoginCode(ctx context.Context, accountID, code string) (token string, account *domain.Account, err error)
	ResendRegistrationCode(ctx context.Context, accountID string) error
}

type accountStore interface {
	Create(ctx context.Context, a *domain.Account) error
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByHandle(ctx context.Context, handle string) (*domain.Account, error)
	Save(ctx context.Context, a *domain.Account) error
	TouchLastSeen(ctx context.Context, accountID string, t time.Time) error
}

type gateway interface {
	SendEmail(to, subject, body string) error
}

type credentialSigner interface {
	Sign(accountID string) (string, error)
}

type service struct {
	repo    accountStore
	gateway gateway
	signer  credentialSigner
}

type ServiceDeps struct {
	AccountRepo accountStore
	Gateway     gateway
	Signer      credentialSigner
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:    deps.AccountRepo,
		gateway: deps.Gateway,
		signer:  deps.Signer,
	}
}

// Register creates an unverified account and delivers the first email
// verification code. The existence pre-checks are a fast path only; the
// store's uniqueness constraint is what actually resolves races.
func (s *service) Register(ctx context.Context, req domain.CreateAccountRequest) (*domain.Account, error) {
	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	if _, err := s.repo.GetByHandle(ctx, req.Handle); err == nil {
		return nil, fmt.Errorf("handle already taken: %w", domain.ErrConflict)
	}
	now := time.Now().UTC()
	a, err := domain.NewAccount(id.New(), req, now)
	if err != nil {
		return nil, err
	}
	code, err := otp.NewCode()
	if err != nil {
		return nil, err
	}
	a = a.WithRegistrationCode(code, now)
	if err := s.repo.Create(ctx, &a); err != nil {
		return nil, err
	}
	s.deliver(a.Email, "Verify your email", "Your verification code: "+code)
	return &a, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	a, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	// Unknown account, deactivated account and wrong password all produce
	// the same message so none are distinguishable from outside.
	if !a.Active || !a.PasswordMatches(req.Password) {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	if !a.EmailVerified {
		return &LoginResult{Account: a, Pending: PendingEmailVerification}, nil
	}

	if !a.LoginVerified {
		code, err := otp.NewCode()
		if err != nil {
			return nil, err
		}
		now := time.Now().UTC()
		next := a.WithLoginCode(code, now)
		if err := s.repo.Save(ctx, &next); err != nil {
			return nil, err
		}
		s.deliver(a.Email, "Confirm your login", "Your login code: "+code)
		return &LoginResult{Account: &next, Pending: PendingLoginVerification}, nil
	}

	now := time.Now().UTC()
	if err := s.repo.TouchLastSeen(ctx, a.AccountID, now); err != nil {
		return nil, err
	}
	token, err := s.signer.Sign(a.AccountID)
	if err != nil {
		return nil, err
	}
	a.LastSeenAt = &now
	return &LoginResult{Token: token, Account: a}, nil
}

// VerifyRegistrationCode consumes the pending registration code and, on
// success, issues a session credential directly so the client skips an
// extra login round trip.
func (s *service) VerifyRegistrationCode(ctx context.Context, accountID, code string) (string, *domain.Account, error) {
	a, err := s.repo.Get(ctx, accountID)
	if err != nil {
		return "", nil, err
	}
	next, err := a.ConfirmRegistrationCode(code, time.Now().UTC())
	if err != nil {
		return "", nil, err
	}
	if err := s.repo.Save(ctx, &next); err != nil {
		return "", nil, err
	}
	token, err := s.signer.Sign(next.AccountID)
	if err != nil {
		return "", nil, err
	}
	return token, &next, nil
}

// VerifyLoginCode consumes the pending first-login code. Success marks the
// account login-verified for good; no later flow clears the flag.
func (s *service) VerifyLoginCode(ctx context.Context, accountID, code string) (string, *domain.Account, error) {
	a, err := s.repo.Get(ctx, accountID)
	if err != nil {
		return "", nil, err
	}
	next, err := a.ConfirmLoginCode(code, time.Now().UTC())
	if err != nil {
		return "", nil, err
	}
	if err := s.repo.Save(ctx, &next); err != nil {
		return "", nil, err
	}
	token, err := s.signer.Sign(next.AccountID)
	if err != nil {
		return "", nil, err
	}
	return token, &next, nil
}

func (s *service) ResendRegistrationCode(ctx context.Context, accountID string) error {
	a, err := s.repo.Get(ctx, accountID)
	if err != nil {
		return err
	}
	if a.EmailVerified {
		return fmt.Errorf("email already verified: %w", domain.ErrConflict)
	}
	code, err := otp.NewCode()
	if err != nil {
		return err
	}
	next := a.WithRegistrationCode(code, time.Now().UTC())
	if err := s.repo.Save(ctx, &next); err != nil {
		return err
	}
	s.deliver(next.Email, "Verify your email", "Your verification code: "+code)
	return nil
}

// deliver hands a message to the notification gateway. Delivery is
// best-effort: a failure is logged and the triggering operation still
// succeeds, since the user can always request a resend.
func (s *service) deliver(to, subject, body string) {
	if err := s.gateway.SendEmail(to, subject, body); err != nil {
		slog.Warn("notification delivery failed", "to", to, "subject", subject, "err", err)
	}
}
