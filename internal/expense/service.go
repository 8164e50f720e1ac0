package expense

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/expense-reimbursement/internal"
	"github.com/frahmantamala/expense-reimbursement/internal/auth"
	categoryDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/category"
	"github.com/frahmantamala/expense-reimbursement/internal/core/events"
	"github.com/frahmantamala/expense-reimbursement/internal/policy"
)

type Repository interface {
	// Create stores e and, when review is not nil, the review row in the same
	// transaction.
	Create(ctx context.Context, e *Expense, review *Review) error
	// GetByID returns nil, nil when the expense does not exist. Reviews are
	// loaded oldest first.
	GetByID(ctx context.Context, id int64) (*Expense, error)
	List(ctx context.Context, filter ListFilter) ([]*Expense, error)
}

type CategoryReader interface {
	GetByID(ctx context.Context, id int64) (*categoryDatamodel.ExpenseCategory, error)
}

type PolicyResolver interface {
	Resolve(ctx context.Context, orgID, userID, categoryID int64) (*policy.Policy, error)
}

type Authorizer interface {
	RequireMember(ctx context.Context, orgID, callerID int64) (auth.Role, error)
	RequireAdmin(ctx context.Context, orgID, callerID int64, deniedMessage string) error
}

var (
	ErrExpenseNotFound  = internal.NewNotFoundError("Expense not found", internal.ErrCodeExpenseNotFound)
	ErrCategoryNotInOrg = internal.NewNotFoundError("Category not found in this organization", internal.ErrCodeCategoryNotFound)
	ErrNotExpenseOwner  = internal.NewForbiddenError("You can only view your own expenses", internal.ErrCodeNotExpenseOwner)
	ErrInvalidStatus    = internal.NewValidationFieldError("status", "status must be one of SUBMITTED, APPROVED, REJECTED", internal.ErrCodeInvalidEnum)
)

type Service struct {
	repo       Repository
	categories CategoryReader
	resolver   PolicyResolver
	guard      Authorizer
	publisher  events.Publisher
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(
	repo Repository,
	categories CategoryReader,
	resolver PolicyResolver,
	guard Authorizer,
	publisher events.Publisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		resolver:   resolver,
		guard:      guard,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the clock used for the future-date check.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SubmitExpense validates the input, resolves the caller's policy and stores
// the expense in the status the disposition engine picks.
func (s *Service) SubmitExpense(ctx context.Context, callerID int64, dto SubmitExpenseDTO) (*SubmitResult, error) {
	date, verr := dto.Validate(s.now())
	if verr != nil {
		return nil, verr
	}
	if _, err := s.guard.RequireMember(ctx, dto.OrganizationID, callerID); err != nil {
		return nil, err
	}

	cat, err := s.categories.GetByID(ctx, dto.CategoryID)
	if err != nil {
		s.logger.Error("failed to load category", "error", err, "category_id", dto.CategoryID)
		return nil, internal.NewInternalError("failed to load category", err)
	}
	if cat == nil || cat.OrganizationID != dto.OrganizationID {
		return nil, ErrCategoryNotInOrg
	}

	p, err := s.resolver.Resolve(ctx, dto.OrganizationID, callerID, dto.CategoryID)
	if err != nil && !errors.Is(err, policy.ErrPolicyNotFound) {
		s.logger.Error("failed to resolve policy", "error", err,
			"organization_id", dto.OrganizationID, "category_id", dto.CategoryID)
		return nil, internal.NewInternalError("failed to resolve policy", err)
	}

	disposition := Decide(p, dto.Amount)

	e := &Expense{
		OrganizationID: dto.OrganizationID,
		UserID:         callerID,
		CategoryID:     dto.CategoryID,
		Amount:         dto.Amount,
		Date:           date,
		Description:    dto.Description,
		Status:         disposition.Status,
		CategoryName:   cat.Name,
	}

	var review *Review
	if disposition.AutoDecided() {
		review = NewSystemReview(disposition.Status)
	}

	if err := s.repo.Create(ctx, e, review); err != nil {
		s.logger.Error("failed to create expense", "error", err, "user_id", callerID)
		return nil, internal.NewInternalError("failed to create expense", err)
	}
	if review != nil {
		e.Reviews = []*Review{review}
	}

	var policyID *int64
	if p != nil {
		policyID = &p.ID
	}

	s.logger.Info("expense submitted",
		"expense_id", e.ID,
		"organization_id", e.OrganizationID,
		"user_id", callerID,
		"amount", e.Amount,
		"status", e.Status,
		"policy_id", policyID)

	event := events.NewExpenseSubmittedEvent(e.ID, e.OrganizationID, callerID, e.Amount, string(e.Status), policyID)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish expense submitted event", "error", err, "expense_id", e.ID)
	}

	return &SubmitResult{
		Expense:  e,
		Status:   disposition.Status,
		Message:  disposition.Message,
		PolicyID: policyID,
	}, nil
}

// List returns the caller's own expenses, or every expense of the
// organization when the caller is an admin.
func (s *Service) List(ctx context.Context, callerID, orgID int64, status *Status) ([]*Expense, error) {
	role, err := s.guard.RequireMember(ctx, orgID, callerID)
	if err != nil {
		return nil, err
	}
	if status != nil && !status.Valid() {
		return nil, ErrInvalidStatus
	}

	filter := ListFilter{OrganizationID: orgID, Status: status}
	if role != auth.RoleAdmin {
		filter.UserID = &callerID
	}

	expenses, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list expenses", "error", err, "organization_id", orgID)
		return nil, internal.NewInternalError("failed to list expenses", err)
	}
	return expenses, nil
}

// Get returns the expense with its review trail to its submitter or an admin
// of its organization.
func (s *Service) Get(ctx context.Context, callerID, expenseID int64) (*Expense, error) {
	e, err := s.repo.GetByID(ctx, expenseID)
	if err != nil {
		s.logger.Error("failed to get expense", "error", err, "expense_id", expenseID)
		return nil, internal.NewInternalError("failed to get expense", err)
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}

	role, err := s.guard.RequireMember(ctx, e.OrganizationID, callerID)
	if err != nil {
		return nil, err
	}
	if role != auth.RoleAdmin && e.UserID != callerID {
		s.logger.Warn("expense access denied", "expense_id", expenseID, "user_id", callerID, "owner_id", e.UserID)
		return nil, ErrNotExpenseOwner
	}
	return e, nil
}
