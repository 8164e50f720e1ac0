package policy

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/expense-reimbursement/internal"
	"github.com/frahmantamala/expense-reimbursement/internal/auth"
	categoryDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/category"
)

type RepositoryAPI interface {
	Lookup
	ListByOrganization(ctx context.Context, orgID int64) ([]*Policy, error)
	// GetByID returns nil, nil when the policy does not exist.
	GetByID(ctx context.Context, id int64) (*Policy, error)
	Create(ctx context.Context, p *Policy) error
	Update(ctx context.Context, p *Policy) error
	Delete(ctx context.Context, id int64) error
}

type CategoryReader interface {
	GetByID(ctx context.Context, id int64) (*categoryDatamodel.ExpenseCategory, error)
}

type Authorizer interface {
	RequireMember(ctx context.Context, orgID, callerID int64) (auth.Role, error)
	RequireAdmin(ctx context.Context, orgID, callerID int64, deniedMessage string) error
}

var (
	ErrNotFound         = internal.NewNotFoundError("Policy not found", internal.ErrCodePolicyNotFound)
	ErrCategoryNotInOrg = internal.NewNotFoundError("Category not found in this organization", internal.ErrCodeCategoryNotFound)
	ErrTargetNotMember  = internal.NewNotFoundError("User is not a member of this organization", internal.ErrCodeMemberNotFound)
	ErrDuplicatePolicy  = internal.NewConflictError("A policy already exists for this category and scope", internal.ErrCodePolicyDuplicate)

	// ErrDuplicateScope is returned by repositories when a unique index
	// rejects a second policy for the same scope.
	ErrDuplicateScope = errors.New("duplicate policy scope")
)

type Service struct {
	repo       RepositoryAPI
	categories CategoryReader
	guard      Authorizer
	resolver   *Resolver
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, categories CategoryReader, guard Authorizer, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		guard:      guard,
		resolver:   NewResolver(repo),
		logger:     logger,
	}
}

func (s *Service) Resolver() *Resolver {
	return s.resolver
}

func (s *Service) List(ctx context.Context, callerID, orgID int64) ([]*Policy, error) {
	if _, err := s.guard.RequireMember(ctx, orgID, callerID); err != nil {
		return nil, err
	}

	policies, err := s.repo.ListByOrganization(ctx, orgID)
	if err != nil {
		s.logger.Error("failed to list policies", "error", err, "organization_id", orgID)
		return nil, internal.NewInternalError("failed to list policies", err)
	}
	return policies, nil
}

func (s *Service) Get(ctx context.Context, callerID, policyID int64) (*Policy, error) {
	p, err := s.load(ctx, policyID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.RequireMember(ctx, p.OrganizationID, callerID); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, callerID, orgID int64, dto CreatePolicyDTO) (*Policy, error) {
	if err := s.guard.RequireAdmin(ctx, orgID, callerID, "Only admins can create policies"); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	cat, err := s.categories.GetByID(ctx, dto.CategoryID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load category", err)
	}
	if cat == nil || cat.OrganizationID != orgID {
		return nil, ErrCategoryNotInOrg
	}

	scope := dto.Scope()
	if userID, ok := scope.UserID(); ok {
		if _, err := s.guard.RequireMember(ctx, orgID, userID); err != nil {
			if appErr, ok := internal.IsAppError(err); ok && appErr.Type == internal.ErrorTypeForbidden {
				return nil, ErrTargetNotMember
			}
			return nil, err
		}
	}

	existing, err := s.repo.FindByScope(ctx, orgID, dto.CategoryID, scope)
	if err != nil {
		return nil, internal.NewInternalError("failed to check existing policy", err)
	}
	if existing != nil {
		return nil, ErrDuplicatePolicy
	}

	p := &Policy{
		OrganizationID: orgID,
		CategoryID:     dto.CategoryID,
		Scope:          scope,
		MaxAmount:      dto.MaxAmount,
		Period:         dto.Period,
		AutoApprove:    dto.AutoApprove,
		CategoryName:   cat.Name,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, ErrDuplicateScope) {
			return nil, ErrDuplicatePolicy
		}
		s.logger.Error("failed to create policy", "error", err, "organization_id", orgID)
		return nil, internal.NewInternalError("failed to create policy", err)
	}

	s.logger.Info("policy created",
		"policy_id", p.ID,
		"organization_id", orgID,
		"category_id", p.CategoryID,
		"scope", p.Scope.String(),
		"user_id", callerID)
	return p, nil
}

// Update changes limits going forward. Decisions already recorded on
// expenses are not revisited.
func (s *Service) Update(ctx context.Context, callerID, policyID int64, dto UpdatePolicyDTO) (*Policy, error) {
	p, err := s.load(ctx, policyID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.RequireAdmin(ctx, p.OrganizationID, callerID, "Only admins can update policies"); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p.MaxAmount = dto.MaxAmount
	p.Period = dto.Period
	p.AutoApprove = dto.AutoApprove
	if err := s.repo.Update(ctx, p); err != nil {
		s.logger.Error("failed to update policy", "error", err, "policy_id", policyID)
		return nil, internal.NewInternalError("failed to update policy", err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, callerID, policyID int64) error {
	p, err := s.load(ctx, policyID)
	if err != nil {
		return err
	}
	if err := s.guard.RequireAdmin(ctx, p.OrganizationID, callerID, "Only admins can delete policies"); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, policyID); err != nil {
		s.logger.Error("failed to delete policy", "error", err, "policy_id", policyID)
		return internal.NewInternalError("failed to delete policy", err)
	}
	s.logger.Info("policy deleted", "policy_id", policyID, "user_id", callerID)
	return nil
}

// ResolvePolicy returns the effective policy for userID in categoryID.
func (s *Service) ResolvePolicy(ctx context.Context, callerID, orgID, userID, categoryID int64) (*Policy, error) {
	if _, err := s.guard.RequireMember(ctx, orgID, callerID); err != nil {
		return nil, err
	}

	p, err := s.resolver.Resolve(ctx, orgID, userID, categoryID)
	if err != nil {
		return nil, s.wrapLookupErr(err)
	}
	return p, nil
}

func (s *Service) DebugPolicy(ctx context.Context, callerID, orgID, userID, categoryID int64) (*Debug, error) {
	if _, err := s.guard.RequireMember(ctx, orgID, callerID); err != nil {
		return nil, err
	}

	d, err := s.resolver.Debug(ctx, orgID, userID, categoryID)
	if err != nil {
		return nil, s.wrapLookupErr(err)
	}
	return d, nil
}

func (s *Service) wrapLookupErr(err error) error {
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	s.logger.Error("policy lookup failed", "error", err)
	return internal.NewInternalError("failed to resolve policy", err)
}

func (s *Service) load(ctx context.Context, policyID int64) (*Policy, error) {
	p, err := s.repo.GetByID(ctx, policyID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load policy", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}
