package http

import (
	"context"
	"time"

	"github.com/linkup-api/internal/domain"
)

// AccountRepository is the minimal interface the router requires from the
// account store. Uniqueness on email and handle is the store's job: Create
// must fail with domain.ErrConflict when either is taken, atomically.
type AccountRepository interface {
	Create(ctx context.Context, a *domain.Account) error
	Get(ctx context.Context, accountID string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByHandle(ctx context.Context, handle string) (*domain.Account, error)
	GetByResetToken(ctx context.Context, resetToken string) (*domain.Account, error)
	Save(ctx context.Context, a *domain.Account) error
	TouchLastSeen(ctx context.Context, accountID string, t time.Time) error
}

// NotificationGateway delivers verification codes and reset tokens.
// Delivery is best-effort; callers treat failures as non-fatal.
type NotificationGateway interface {
	SendEmail(to, subject, body string) error
}
