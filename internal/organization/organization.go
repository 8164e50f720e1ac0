package organization

import (
	"time"

	"github.com/frahmantamala/expense-reimbursement/internal/auth"
	orgDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/organization"
)

type Organization struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary is one entry of the caller's organization list.
type Summary struct {
	Organization
	Role auth.Role `json:"role"`
}

type Detail struct {
	Organization
	CurrentUserRole auth.Role `json:"current_user_role"`
	Members         []*Member `json:"members"`
}

type Member struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	UserID         int64     `json:"user_id"`
	Role           auth.Role `json:"role"`
	Email          string    `json:"email,omitempty"`
	Name           string    `json:"name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (m *Member) IsAdmin() bool {
	return m.Role == auth.RoleAdmin
}

// MemberRecord is a membership row joined with the member's user.
type MemberRecord struct {
	orgDatamodel.Membership `gorm:"embedded"`
	Email                   string `gorm:"column:email"`
	Name                    string `gorm:"column:name"`
}

// SummaryRecord is an organization row joined with the caller's role.
type SummaryRecord struct {
	orgDatamodel.Organization `gorm:"embedded"`
	Role                      string `gorm:"column:role"`
}

func ToDataModel(o *Organization) *orgDatamodel.Organization {
	return &orgDatamodel.Organization{
		ID:        o.ID,
		Name:      o.Name,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func FromDataModel(o *orgDatamodel.Organization) *Organization {
	return &Organization{
		ID:        o.ID,
		Name:      o.Name,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func MemberToDataModel(m *Member) *orgDatamodel.Membership {
	return &orgDatamodel.Membership{
		ID:             m.ID,
		OrganizationID: m.OrganizationID,
		UserID:         m.UserID,
		Role:           string(m.Role),
		CreatedAt:      m.CreatedAt,
	}
}

func MemberFromRecord(r *MemberRecord) *Member {
	return &Member{
		ID:             r.ID,
		OrganizationID: r.OrganizationID,
		UserID:         r.UserID,
		Role:           auth.Role(r.Role),
		Email:          r.Email,
		Name:           r.Name,
		CreatedAt:      r.CreatedAt,
	}
}

func SummaryFromRecord(r *SummaryRecord) *Summary {
	return &Summary{
		Organization: *FromDataModel(&r.Organization),
		Role:         auth.Role(r.Role),
	}
}
