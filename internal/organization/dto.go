package organization

import (
	"strings"

	"github.com/frahmantamala/expense-reimbursement/internal"
	"github.com/frahmantamala/expense-reimbursement/internal/auth"
	"github.com/frahmantamala/expense-reimbursement/internal/core/common/validation"
)

// OrganizationDTO is the body of create and update requests.
type OrganizationDTO struct {
	Name string `json:"name" validate:"required,max=255"`
}

func (d *OrganizationDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
}

func (d OrganizationDTO) Validate() *internal.AppError {
	return validation.Struct(d)
}

type InviteUserDTO struct {
	Email string    `json:"email"`
	Role  auth.Role `json:"role,omitempty"`
}

// Normalize trims the email and defaults the role to MEMBER.
func (d *InviteUserDTO) Normalize() {
	d.Email = strings.TrimSpace(d.Email)
	if d.Role == "" {
		d.Role = auth.RoleMember
	}
}

func (d InviteUserDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().Email()
	v.Field("role", string(d.Role)).OneOf(string(auth.RoleAdmin), string(auth.RoleMember))
	return v.Validate()
}

type UpdateMemberRoleDTO struct {
	Role auth.Role `json:"role" validate:"required,oneof=ADMIN MEMBER"`
}

func (d UpdateMemberRoleDTO) Validate() *internal.AppError {
	return validation.Struct(d)
}

type OrganizationsResponse struct {
	Organizations []*Summary `json:"organizations"`
}

type MembersResponse struct {
	Members []*Member `json:"members"`
}
