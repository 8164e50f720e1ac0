package auth

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/expense-reimbursement/internal"
)

//go:generate mockgen -source=guard.go -destination=mocks/mock_membership.go -package=mocks MembershipReader

// MembershipReader looks up a user's role in an organization. It returns an
// empty Role when the user is not a member.
type MembershipReader interface {
	GetRole(ctx context.Context, orgID, userID int64) (Role, error)
}

var ErrNotMember = internal.NewForbiddenError("You are not a member of this organization", internal.ErrCodeNotMember)

// Guard is the single place where organization role checks happen.
type Guard struct {
	memberships MembershipReader
	logger      *slog.Logger
}

func NewGuard(memberships MembershipReader, logger *slog.Logger) *Guard {
	return &Guard{memberships: memberships, logger: logger}
}

// RequireMember returns the caller's role, or Forbidden if the caller does not
// belong to the organization.
func (g *Guard) RequireMember(ctx context.Context, orgID, callerID int64) (Role, error) {
	role, err := g.memberships.GetRole(ctx, orgID, callerID)
	if err != nil {
		g.logger.Error("failed to read membership", "error", err, "organization_id", orgID, "user_id", callerID)
		return "", internal.NewInternalError("failed to check membership", err)
	}
	if role == "" {
		return "", ErrNotMember
	}
	return role, nil
}

// RequireAdmin fails with Forbidden carrying deniedMessage unless the caller is
// an admin of the organization.
func (g *Guard) RequireAdmin(ctx context.Context, orgID, callerID int64, deniedMessage string) error {
	role, err := g.memberships.GetRole(ctx, orgID, callerID)
	if err != nil {
		g.logger.Error("failed to read membership", "error", err, "organization_id", orgID, "user_id", callerID)
		return internal.NewInternalError("failed to check membership", err)
	}
	if role != RoleAdmin {
		g.logger.Warn("admin role required", "organization_id", orgID, "user_id", callerID, "role", role)
		return internal.NewForbiddenError(deniedMessage, internal.ErrCodeAdminRequired)
	}
	return nil
}
