package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/expense-reimbursement/internal/auth"
	orgDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/organization"
	"github.com/frahmantamala/expense-reimbursement/internal/organization"
)

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

var _ organization.Repository = (*OrganizationRepository)(nil)

func (r *OrganizationRepository) Create(ctx context.Context, org *orgDatamodel.Organization, creatorID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return err
		}
		return tx.Create(&orgDatamodel.Membership{
			OrganizationID: org.ID,
			UserID:         creatorID,
			Role:           string(auth.RoleAdmin),
		}).Error
	})
}

func (r *OrganizationRepository) ListForUser(ctx context.Context, userID int64) ([]*organization.SummaryRecord, error) {
	var rows []*organization.SummaryRecord
	err := r.db.WithContext(ctx).
		Table("organizations").
		Select("organizations.*, memberships.role AS role").
		Joins("JOIN memberships ON memberships.organization_id = organizations.id").
		Where("memberships.user_id = ?", userID).
		Order("organizations.name ASC, organizations.id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id int64) (*orgDatamodel.Organization, error) {
	var org orgDatamodel.Organization
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepository) Update(ctx context.Context, org *orgDatamodel.Organization) error {
	return r.db.WithContext(ctx).
		Model(org).
		Select("name", "updated_at").
		Updates(org).Error
}

func members(db *gorm.DB) *gorm.DB {
	return db.Table("memberships").
		Select("memberships.*, users.email AS email, users.name AS name").
		Joins("JOIN users ON users.id = memberships.user_id")
}

func (r *OrganizationRepository) ListMembers(ctx context.Context, orgID int64) ([]*organization.MemberRecord, error) {
	var rows []*organization.MemberRecord
	err := members(r.db.WithContext(ctx)).
		Where("memberships.organization_id = ?", orgID).
		Order("memberships.created_at ASC, memberships.id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *OrganizationRepository) GetMember(ctx context.Context, orgID, userID int64) (*organization.MemberRecord, error) {
	var row organization.MemberRecord
	res := members(r.db.WithContext(ctx)).
		Where("memberships.organization_id = ? AND memberships.user_id = ?", orgID, userID).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *OrganizationRepository) AddMember(ctx context.Context, membership *orgDatamodel.Membership) error {
	err := r.db.WithContext(ctx).Create(membership).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return organization.ErrDuplicateMember
	}
	return err
}

func (r *OrganizationRepository) RemoveMember(ctx context.Context, orgID, userID int64) error {
	return r.db.WithContext(ctx).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		Delete(&orgDatamodel.Membership{}).Error
}

func (r *OrganizationRepository) UpdateMemberRole(ctx context.Context, orgID, userID int64, role auth.Role) error {
	return r.db.WithContext(ctx).
		Model(&orgDatamodel.Membership{}).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		Update("role", string(role)).Error
}
