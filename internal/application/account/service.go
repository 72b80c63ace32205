package account

import (
	"context"

	"github.com/linkup-api/internal/domain"
)

// Service resolves account views for authenticated callers.
type Service interface {
	Get(ctx context.Context, accountID string) (*domain.Account, error)
}

type accountStore interface {
	Get(ctx context.Context, accountID string) (*domain.Account, error)
}

type service struct {
	repo accountStore
}

func NewService(repo accountStore) Service {
	return &service{repo: repo}
}

func (s *service) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.repo.Get(ctx, accountID)
}
