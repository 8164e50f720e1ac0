package user

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/expense-reimbursement/internal"
)

type Repository interface {
	// GetByID and GetByEmail return nil, nil when no user matches.
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetByID(ctx context.Context, userID int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to get user", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("failed to get user", err)
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// FindByEmail matches case-insensitively and returns nil, nil when nobody has
// the address.
func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		s.logger.Error("failed to find user by email", "error", err)
		return nil, internal.NewInternalError("failed to find user", err)
	}
	return u, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
