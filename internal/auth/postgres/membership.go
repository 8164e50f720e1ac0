package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/expense-reimbursement/internal/auth"
)

// MembershipReader answers role lookups with a single indexed query. It sits
// on the sqlx pool directly because every authorized request hits it.
type MembershipReader struct {
	db *sqlx.DB
}

func NewMembershipReader(db *sqlx.DB) *MembershipReader {
	return &MembershipReader{db: db}
}

const roleQuery = `SELECT role FROM memberships WHERE organization_id = ? AND user_id = ?`

func (m *MembershipReader) GetRole(ctx context.Context, orgID, userID int64) (auth.Role, error) {
	var role string
	err := m.db.GetContext(ctx, &role, m.db.Rebind(roleQuery), orgID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get membership role: %w", err)
	}
	return auth.Role(role), nil
}
