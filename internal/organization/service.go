package organization

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/expense-reimbursement/internal"
	"github.com/frahmantamala/expense-reimbursement/internal/auth"
	orgDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/organization"
	"github.com/frahmantamala/expense-reimbursement/internal/user"
)

type Repository interface {
	// Create inserts the organization and the creator's ADMIN membership in
	// one transaction.
	Create(ctx context.Context, org *orgDatamodel.Organization, creatorID int64) error
	ListForUser(ctx context.Context, userID int64) ([]*SummaryRecord, error)
	// GetByID and GetMember return nil, nil when nothing matches.
	GetByID(ctx context.Context, id int64) (*orgDatamodel.Organization, error)
	Update(ctx context.Context, org *orgDatamodel.Organization) error
	ListMembers(ctx context.Context, orgID int64) ([]*MemberRecord, error)
	GetMember(ctx context.Context, orgID, userID int64) (*MemberRecord, error)
	AddMember(ctx context.Context, membership *orgDatamodel.Membership) error
	RemoveMember(ctx context.Context, orgID, userID int64) error
	UpdateMemberRole(ctx context.Context, orgID, userID int64, role auth.Role) error
}

// UserFinder resolves invitees. It returns nil, nil for unknown emails.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}

type Authorizer interface {
	RequireMember(ctx context.Context, orgID, callerID int64) (auth.Role, error)
	RequireAdmin(ctx context.Context, orgID, callerID int64, deniedMessage string) error
}

// ErrDuplicateMember is returned by repositories when the membership unique
// index rejects an insert.
var ErrDuplicateMember = errors.New("organization: duplicate membership")

var (
	ErrOrganizationNotFound = internal.NewNotFoundError("Organization not found", internal.ErrCodeOrganizationNotFound)
	ErrMemberNotFound       = internal.NewNotFoundError("Member not found", internal.ErrCodeMemberNotFound)
	ErrInviteeNotFound      = internal.NewNotFoundError("User not found with this email", internal.ErrCodeUserNotFound)
	ErrAlreadyMember        = internal.NewConflictError("User is already a member of this organization", internal.ErrCodeAlreadyMember)
	ErrRemoveSelf           = internal.NewInvalidStateError("You cannot remove yourself from the organization", internal.ErrCodeSelfModification)
	ErrChangeOwnRole        = internal.NewInvalidStateError("You cannot change your own role", internal.ErrCodeSelfModification)
)

type Service struct {
	repo   Repository
	users  UserFinder
	guard  Authorizer
	logger *slog.Logger
}

func NewService(repo Repository, users UserFinder, guard Authorizer, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		guard:  guard,
		logger: logger,
	}
}

// Create makes a new organization with the caller as its first admin.
func (s *Service) Create(ctx context.Context, callerID int64, dto OrganizationDTO) (*Organization, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row := &orgDatamodel.Organization{Name: dto.Name}
	if err := s.repo.Create(ctx, row, callerID); err != nil {
		s.logger.Error("failed to create organization", "error", err, "user_id", callerID)
		return nil, internal.NewInternalError("failed to create organization", err)
	}

	s.logger.Info("organization created", "organization_id", row.ID, "user_id", callerID)
	return FromDataModel(row), nil
}

func (s *Service) List(ctx context.Context, callerID int64) ([]*Summary, error) {
	rows, err := s.repo.ListForUser(ctx, callerID)
	if err != nil {
		s.logger.Error("failed to list organizations", "error", err, "user_id", callerID)
		return nil, internal.NewInternalError("failed to list organizations", err)
	}

	out := make([]*Summary, 0, len(rows))
	for _, r := range rows {
		out = append(out, SummaryFromRecord(r))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, callerID, orgID int64) (*Detail, error) {
	org, err := s.load(ctx, orgID)
	if err != nil {
		return nil, err
	}
	role, err := s.guard.RequireMember(ctx, orgID, callerID)
	if err != nil {
		return nil, err
	}

	members, err := s.members(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return &Detail{Organization: *org, CurrentUserRole: role, Members: members}, nil
}

func (s *Service) Update(ctx context.Context, callerID, orgID int64, dto OrganizationDTO) (*Organization, error) {
	org, err := s.load(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.RequireAdmin(ctx, orgID, callerID, "Only admins can update organization details"); err != nil {
		return nil, err
	}

	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	org.Name = dto.Name
	row := ToDataModel(org)
	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update organization", "error", err, "organization_id", orgID)
		return nil, internal.NewInternalError("failed to update organization", err)
	}
	return FromDataModel(row), nil
}

// InviteUser adds an existing user to the organization by email.
func (s *Service) InviteUser(ctx context.Context, callerID, orgID int64, dto InviteUserDTO) (*Member, error) {
	if err := s.guard.RequireAdmin(ctx, orgID, callerID, "Only admins can invite users"); err != nil {
		return nil, err
	}

	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	invitee, err := s.users.FindByEmail(ctx, dto.Email)
	if err != nil {
		s.logger.Error("failed to look up invitee", "error", err, "organization_id", orgID)
		return nil, internal.NewInternalError("failed to look up user", err)
	}
	if invitee == nil {
		return nil, ErrInviteeNotFound
	}

	existing, err := s.repo.GetMember(ctx, orgID, invitee.ID)
	if err != nil {
		s.logger.Error("failed to read membership", "error", err, "organization_id", orgID, "user_id", invitee.ID)
		return nil, internal.NewInternalError("failed to read membership", err)
	}
	if existing != nil {
		return nil, ErrAlreadyMember
	}

	row := &orgDatamodel.Membership{
		OrganizationID: orgID,
		UserID:         invitee.ID,
		Role:           string(dto.Role),
	}
	if err := s.repo.AddMember(ctx, row); err != nil {
		if errors.Is(err, ErrDuplicateMember) {
			return nil, ErrAlreadyMember
		}
		s.logger.Error("failed to add member", "error", err, "organization_id", orgID, "user_id", invitee.ID)
		return nil, internal.NewInternalError("failed to add member", err)
	}

	s.logger.Info("user invited", "organization_id", orgID, "user_id", invitee.ID, "role", dto.Role, "invited_by", callerID)
	return &Member{
		ID:             row.ID,
		OrganizationID: orgID,
		UserID:         invitee.ID,
		Role:           dto.Role,
		Email:          invitee.Email,
		Name:           invitee.Name,
		CreatedAt:      row.CreatedAt,
	}, nil
}

func (s *Service) ListMembers(ctx context.Context, callerID, orgID int64) ([]*Member, error) {
	if _, err := s.guard.RequireMember(ctx, orgID, callerID); err != nil {
		return nil, err
	}
	return s.members(ctx, orgID)
}

func (s *Service) RemoveMember(ctx context.Context, callerID, orgID, userID int64) error {
	if err := s.guard.RequireAdmin(ctx, orgID, callerID, "Only admins can remove members"); err != nil {
		return err
	}
	if userID == callerID {
		return ErrRemoveSelf
	}
	if _, err := s.member(ctx, orgID, userID); err != nil {
		return err
	}

	if err := s.repo.RemoveMember(ctx, orgID, userID); err != nil {
		s.logger.Error("failed to remove member", "error", err, "organization_id", orgID, "user_id", userID)
		return internal.NewInternalError("failed to remove member", err)
	}
	s.logger.Info("member removed", "organization_id", orgID, "user_id", userID, "removed_by", callerID)
	return nil
}

func (s *Service) UpdateMemberRole(ctx context.Context, callerID, orgID, userID int64, dto UpdateMemberRoleDTO) (*Member, error) {
	if err := s.guard.RequireAdmin(ctx, orgID, callerID, "Only admins can update member roles"); err != nil {
		return nil, err
	}
	if userID == callerID {
		return nil, ErrChangeOwnRole
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	m, err := s.member(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateMemberRole(ctx, orgID, userID, dto.Role); err != nil {
		s.logger.Error("failed to update member role", "error", err, "organization_id", orgID, "user_id", userID)
		return nil, internal.NewInternalError("failed to update member role", err)
	}
	m.Role = dto.Role
	return m, nil
}

// GetCurrentMembership returns the caller's own membership row.
func (s *Service) GetCurrentMembership(ctx context.Context, callerID, orgID int64) (*Member, error) {
	if _, err := s.guard.RequireMember(ctx, orgID, callerID); err != nil {
		return nil, err
	}
	return s.member(ctx, orgID, callerID)
}

func (s *Service) load(ctx context.Context, orgID int64) (*Organization, error) {
	row, err := s.repo.GetByID(ctx, orgID)
	if err != nil {
		s.logger.Error("failed to get organization", "error", err, "organization_id", orgID)
		return nil, internal.NewInternalError("failed to get organization", err)
	}
	if row == nil {
		return nil, ErrOrganizationNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) member(ctx context.Context, orgID, userID int64) (*Member, error) {
	rec, err := s.repo.GetMember(ctx, orgID, userID)
	if err != nil {
		s.logger.Error("failed to read membership", "error", err, "organization_id", orgID, "user_id", userID)
		return nil, internal.NewInternalError("failed to read membership", err)
	}
	if rec == nil {
		return nil, ErrMemberNotFound
	}
	return MemberFromRecord(rec), nil
}

func (s *Service) members(ctx context.Context, orgID int64) ([]*Member, error) {
	recs, err := s.repo.ListMembers(ctx, orgID)
	if err != nil {
		s.logger.Error("failed to list members", "error", err, "organization_id", orgID)
		return nil, internal.NewInternalError("failed to list members", err)
	}
	out := make([]*Member, 0, len(recs))
	for _, r := range recs {
		out = append(out, MemberFromRecord(r))
	}
	return out, nil
}
