package review

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/expense-reimbursement/internal"
	"github.com/frahmantamala/expense-reimbursement/internal/core/events"
	"github.com/frahmantamala/expense-reimbursement/internal/expense"
)

type Service struct {
	repo      Repository
	guard     Authorizer
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, guard Authorizer, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		guard:     guard,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) Approve(ctx context.Context, callerID, expenseID int64, comment *string) (*expense.Expense, error) {
	return s.transition(ctx, approve, callerID, expenseID, comment)
}

func (s *Service) Reject(ctx context.Context, callerID, expenseID int64, comment *string) (*expense.Expense, error) {
	return s.transition(ctx, reject, callerID, expenseID, comment)
}

func (s *Service) transition(ctx context.Context, a action, callerID, expenseID int64, comment *string) (*expense.Expense, error) {
	current, err := s.repo.GetExpense(ctx, expenseID)
	if err != nil {
		s.logger.Error("failed to load expense for review", "error", err, "expense_id", expenseID)
		return nil, internal.NewInternalError("failed to load expense", err)
	}
	if current == nil {
		return nil, ErrExpenseNotFound
	}

	if err := s.guard.RequireAdmin(ctx, current.OrganizationID, callerID, a.deniedMessage); err != nil {
		return nil, err
	}

	if !current.CanBeReviewed() {
		s.logger.Warn("expense is not awaiting review",
			"expense_id", expenseID,
			"current_status", current.Status,
			"target_status", a.target)
		return nil, a.invalidState
	}

	updated, err := s.repo.Transition(ctx, expense.NewManualReview(expenseID, callerID, a.target, normalizeComment(comment)))
	if err != nil {
		if errors.Is(err, ErrNotSubmitted) {
			// lost a race with another reviewer
			s.logger.Warn("concurrent review detected", "expense_id", expenseID, "target_status", a.target)
			return nil, a.invalidState
		}
		s.logger.Error("failed to record review", "error", err, "expense_id", expenseID)
		return nil, internal.NewInternalError("failed to record review", err)
	}

	s.logger.Info("expense reviewed",
		"expense_id", expenseID,
		"organization_id", updated.OrganizationID,
		"reviewer_id", callerID,
		"status", updated.Status)

	event := events.NewExpenseReviewedEvent(expenseID, updated.OrganizationID, callerID, string(updated.Status))
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish expense reviewed event", "error", err, "expense_id", expenseID)
	}
	return updated, nil
}

// ListPending returns the organization's SUBMITTED expenses, oldest first.
func (s *Service) ListPending(ctx context.Context, callerID, orgID int64) ([]*expense.Expense, error) {
	if err := s.guard.RequireAdmin(ctx, orgID, callerID, "Only admins can list pending expenses"); err != nil {
		return nil, err
	}

	pending, err := s.repo.ListPending(ctx, orgID)
	if err != nil {
		s.logger.Error("failed to list pending expenses", "error", err, "organization_id", orgID)
		return nil, internal.NewInternalError("failed to list pending expenses", err)
	}
	return pending, nil
}

func normalizeComment(comment *string) *string {
	if comment == nil || *comment == "" {
		return nil
	}
	return comment
}
