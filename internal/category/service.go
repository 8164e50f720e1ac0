package category

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/expense-reimbursement/internal"
	"github.com/frahmantamala/expense-reimbursement/internal/auth"
	categoryDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/category"
)

type RepositoryAPI interface {
	ListByOrganization(ctx context.Context, orgID int64) ([]*categoryDatamodel.ExpenseCategory, error)
	// GetByID and GetByName return nil, nil when nothing matches.
	GetByID(ctx context.Context, id int64) (*categoryDatamodel.ExpenseCategory, error)
	GetByName(ctx context.Context, orgID int64, name string) (*categoryDatamodel.ExpenseCategory, error)
	Create(ctx context.Context, category *categoryDatamodel.ExpenseCategory) error
	Update(ctx context.Context, category *categoryDatamodel.ExpenseCategory) error
	Delete(ctx context.Context, id int64) error
	IsInUse(ctx context.Context, id int64) (bool, error)
}

type Authorizer interface {
	RequireMember(ctx context.Context, orgID, callerID int64) (auth.Role, error)
	RequireAdmin(ctx context.Context, orgID, callerID int64, deniedMessage string) error
}

var (
	ErrCategoryNotFound  = internal.NewNotFoundError("Category not found", internal.ErrCodeCategoryNotFound)
	ErrCategoryDuplicate = internal.NewConflictError("Category with this name already exists", internal.ErrCodeCategoryDuplicate)
	ErrCategoryInUse     = internal.NewConflictError("Category is used by policies or expenses", internal.ErrCodeCategoryInUse)
)

type Service struct {
	repo   RepositoryAPI
	guard  Authorizer
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, guard Authorizer, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		guard:  guard,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context, callerID, orgID int64) ([]CategoryResponse, error) {
	if _, err := s.guard.RequireMember(ctx, orgID, callerID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByOrganization(ctx, orgID)
	if err != nil {
		s.logger.Error("failed to list categories", "error", err, "organization_id", orgID)
		return nil, internal.NewInternalError("failed to list categories", err)
	}

	responses := make([]CategoryResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, FromDataModel(row).ToResponse())
	}
	return responses, nil
}

func (s *Service) Get(ctx context.Context, callerID, orgID, categoryID int64) (*CategoryResponse, error) {
	if _, err := s.guard.RequireMember(ctx, orgID, callerID); err != nil {
		return nil, err
	}

	cat, err := s.load(ctx, orgID, categoryID)
	if err != nil {
		return nil, err
	}
	resp := cat.ToResponse()
	return &resp, nil
}

func (s *Service) Create(ctx context.Context, callerID, orgID int64, dto CategoryDTO) (*CategoryResponse, error) {
	if err := s.guard.RequireAdmin(ctx, orgID, callerID, "Only admins can create categories"); err != nil {
		return nil, err
	}

	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, orgID, dto.Name, 0); err != nil {
		return nil, err
	}

	row := &categoryDatamodel.ExpenseCategory{
		OrganizationID: orgID,
		Name:           dto.Name,
		Description:    dto.Description,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create category", "error", err, "organization_id", orgID)
		return nil, internal.NewInternalError("failed to create category", err)
	}

	s.logger.Info("category created", "category_id", row.ID, "organization_id", orgID, "user_id", callerID)
	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, callerID, orgID, categoryID int64, dto CategoryDTO) (*CategoryResponse, error) {
	if err := s.guard.RequireAdmin(ctx, orgID, callerID, "Only admins can update categories"); err != nil {
		return nil, err
	}

	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	cat, err := s.load(ctx, orgID, categoryID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, orgID, dto.Name, cat.ID); err != nil {
		return nil, err
	}

	cat.Name = dto.Name
	cat.Description = dto.Description
	row := ToDataModel(cat)
	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update category", "error", err, "category_id", categoryID)
		return nil, internal.NewInternalError("failed to update category", err)
	}

	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, callerID, orgID, categoryID int64) error {
	if err := s.guard.RequireAdmin(ctx, orgID, callerID, "Only admins can delete categories"); err != nil {
		return err
	}

	if _, err := s.load(ctx, orgID, categoryID); err != nil {
		return err
	}

	inUse, err := s.repo.IsInUse(ctx, categoryID)
	if err != nil {
		return internal.NewInternalError("failed to delete category", err)
	}
	if inUse {
		return ErrCategoryInUse
	}

	if err := s.repo.Delete(ctx, categoryID); err != nil {
		s.logger.Error("failed to delete category", "error", err, "category_id", categoryID)
		return internal.NewInternalError("failed to delete category", err)
	}
	s.logger.Info("category deleted", "category_id", categoryID, "organization_id", orgID, "user_id", callerID)
	return nil
}

func (s *Service) load(ctx context.Context, orgID, categoryID int64) (*Category, error) {
	row, err := s.repo.GetByID(ctx, categoryID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load category", err)
	}
	if row == nil || row.OrganizationID != orgID {
		return nil, ErrCategoryNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) ensureUniqueName(ctx context.Context, orgID int64, name string, selfID int64) error {
	existing, err := s.repo.GetByName(ctx, orgID, name)
	if err != nil {
		return internal.NewInternalError("failed to check category name", err)
	}
	if existing != nil && existing.ID != selfID {
		return ErrCategoryDuplicate
	}
	return nil
}
