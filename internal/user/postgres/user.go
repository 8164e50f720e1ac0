package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/expense-reimbursement/internal/user"
)

const selectUser = `SELECT id, email, name, is_active, created_at, updated_at FROM users`

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

var _ user.Repository = (*Repository)(nil)

func (r *Repository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return r.get(ctx, selectUser+` WHERE id = ?`, id)
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.get(ctx, selectUser+` WHERE LOWER(email) = ?`, email)
}

func (r *Repository) get(ctx context.Context, query string, arg interface{}) (*user.User, error) {
	var u user.User
	if err := r.db.GetContext(ctx, &u, r.db.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
