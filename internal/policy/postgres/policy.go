package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	policyDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/policy"
	"github.com/frahmantamala/expense-reimbursement/internal/policy"
)

type PolicyRepository struct {
	db *gorm.DB
}

func NewPolicyRepository(db *gorm.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

var _ policy.RepositoryAPI = (*PolicyRepository)(nil)

const recordColumns = "policies.*, expense_categories.name AS category_name, users.email AS user_email"

func (r *PolicyRepository) records(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&policyDatamodel.Policy{}).
		Select(recordColumns).
		Joins("JOIN expense_categories ON expense_categories.id = policies.category_id").
		Joins("LEFT JOIN users ON users.id = policies.user_id")
}

// FindByScope matches user_id exactly: IS NULL for organization-wide, equality
// otherwise.
func (r *PolicyRepository) FindByScope(ctx context.Context, orgID, categoryID int64, scope policy.Scope) (*policy.Policy, error) {
	q := r.records(ctx).Where("policies.organization_id = ? AND policies.category_id = ?", orgID, categoryID)
	if userID, ok := scope.UserID(); ok {
		q = q.Where("policies.user_id = ?", userID)
	} else {
		q = q.Where("policies.user_id IS NULL")
	}

	var rec policy.Record
	res := q.Order("policies.id ASC").Limit(1).Scan(&rec)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return policy.FromRecord(&rec), nil
}

func (r *PolicyRepository) ListByOrganization(ctx context.Context, orgID int64) ([]*policy.Policy, error) {
	var recs []*policy.Record
	err := r.records(ctx).
		Where("policies.organization_id = ?", orgID).
		Order("CASE WHEN policies.user_id IS NULL THEN 0 ELSE 1 END, policies.category_id ASC, policies.user_id ASC, policies.id ASC").
		Scan(&recs).Error
	if err != nil {
		return nil, err
	}

	out := make([]*policy.Policy, 0, len(recs))
	for _, rec := range recs {
		out = append(out, policy.FromRecord(rec))
	}
	return out, nil
}

func (r *PolicyRepository) GetByID(ctx context.Context, id int64) (*policy.Policy, error) {
	var rec policy.Record
	res := r.records(ctx).Where("policies.id = ?", id).Limit(1).Scan(&rec)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return policy.FromRecord(&rec), nil
}

func (r *PolicyRepository) Create(ctx context.Context, p *policy.Policy) error {
	row := policy.ToDataModel(p)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return policy.ErrDuplicateScope
		}
		return err
	}
	p.ID = row.ID
	p.CreatedAt = row.CreatedAt
	p.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *PolicyRepository) Update(ctx context.Context, p *policy.Policy) error {
	row := policy.ToDataModel(p)
	err := r.db.WithContext(ctx).
		Model(row).
		Select("max_amount", "period", "auto_approve", "updated_at").
		Updates(row).Error
	if err != nil {
		return err
	}
	p.UpdatedAt = row.UpdatedAt
	return nil
}

func (r *PolicyRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&policyDatamodel.Policy{}, id).Error
}
