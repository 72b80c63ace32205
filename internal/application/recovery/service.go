package recovery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/linkup-api/internal/domain"
	"github.com/linkup-api/internal/pkg/token"
)

// Service implements the password-reset flow: a single-use opaque token
// delivered by email, consumed at most once within its lifetime.
//
// Resetting a password does not invalidate previously issued session
// credentials; they are stateless and simply age out.
type Service interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
}

type accountStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByResetToken(ctx context.Context, resetToken string) (*domain.Account, error)
	Save(ctx context.Context, a *domain.Account) error
}

type gateway interface {
	SendEmail(to, subject, body string) error
}

type service struct {
	repo    accountStore
	gateway gateway
}

func NewService(repo accountStore, gw gateway) Service {
	return &service{repo: repo, gateway: gw}
}

// RequestReset attaches a fresh reset token and mails it. Unknown emails
// return nil like everything else, so the endpoint cannot be used to probe
// which addresses have accounts.
func (s *service) RequestReset(ctx context.Context, email string) error {
	a, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		slog.Info("password reset requested for unknown email")
		return nil
	}
	tok, err := token.NewResetToken()
	if err != nil {
		return err
	}
	next := a.WithResetToken(tok, time.Now().UTC())
	if err := s.repo.Save(ctx, &next); err != nil {
		return err
	}
	if err := s.gateway.SendEmail(next.Email, "Reset your password", "Your reset token: "+tok); err != nil {
		slog.Warn("reset token delivery failed", "err", err)
	}
	return nil
}

// ResetPassword consumes the token: a second call with the same token fails
// because the fields were cleared by the first.
func (s *service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	a, err := s.repo.GetByResetToken(ctx, resetToken)
	if err != nil {
		return fmt.Errorf("reset token not recognised: %w", domain.ErrResetTokenInvalid)
	}
	now := time.Now().UTC()
	if !a.ResetTokenValid(now) {
		return fmt.Errorf("reset token expired: %w", domain.ErrResetTokenInvalid)
	}
	hash, err := domain.HashPassword(newPassword)
	if err != nil {
		return err
	}
	next := a.ConsumeResetToken(hash, now)
	return s.repo.Save(ctx, &next)
}
