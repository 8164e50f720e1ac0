package auth

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/expense-reimbursement/internal/auth"
	userdm "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/user"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentialsByEmail(ctx context.Context, email string) (*auth.Credentials, error) {
	var row userdm.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &auth.Credentials{
		UserID:       row.ID,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		IsActive:     row.IsActive,
	}, nil
}

func (r *Repository) GetActiveUser(ctx context.Context, userID int64) (*auth.User, error) {
	var row userdm.User
	err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", userID, true).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &auth.User{ID: row.ID, Email: row.Email, Name: row.Name}, nil
}
