package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/expense-reimbursement/internal/category"
	categoryDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/category"
	expenseDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/expense"
	policyDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/policy"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

var _ category.RepositoryAPI = (*CategoryRepository)(nil)

func (r *CategoryRepository) ListByOrganization(ctx context.Context, orgID int64) ([]*categoryDatamodel.ExpenseCategory, error) {
	var categories []*categoryDatamodel.ExpenseCategory
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("name ASC").
		Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) GetByName(ctx context.Context, orgID int64, name string) (*categoryDatamodel.ExpenseCategory, error) {
	var cat categoryDatamodel.ExpenseCategory
	err := r.db.WithContext(ctx).Where("organization_id = ? AND name = ?", orgID, name).First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*categoryDatamodel.ExpenseCategory, error) {
	var cat categoryDatamodel.ExpenseCategory
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepository) Create(ctx context.Context, cat *categoryDatamodel.ExpenseCategory) error {
	return r.db.WithContext(ctx).Create(cat).Error
}

func (r *CategoryRepository) Update(ctx context.Context, cat *categoryDatamodel.ExpenseCategory) error {
	return r.db.WithContext(ctx).
		Model(cat).
		Select("name", "description", "updated_at").
		Updates(cat).Error
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&categoryDatamodel.ExpenseCategory{}, id).Error
}

func (r *CategoryRepository) IsInUse(ctx context.Context, id int64) (bool, error) {
	var policies, expenses int64
	db := r.db.WithContext(ctx)
	if err := db.Model(&policyDatamodel.Policy{}).Where("category_id = ?", id).Count(&policies).Error; err != nil {
		return false, err
	}
	if err := db.Model(&expenseDatamodel.Expense{}).Where("category_id = ?", id).Count(&expenses).Error; err != nil {
		return false, err
	}
	return policies+expenses > 0, nil
}
