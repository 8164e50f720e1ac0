package policy

import (
	"time"

	policyDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/policy"
)

type Period string

const (
	PeriodMonthly Period = "MONTHLY"
	PeriodYearly  Period = "YEARLY"
)

func (p Period) Valid() bool {
	return p == PeriodMonthly || p == PeriodYearly
}

// Policy caps spending for one category. MaxAmount is in minor currency units.
type Policy struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	CategoryID     int64     `json:"category_id"`
	Scope          Scope     `json:"scope"`
	MaxAmount      int64     `json:"max_amount"`
	Period         Period    `json:"period"`
	AutoApprove    bool      `json:"auto_approve"`
	CategoryName   string    `json:"category_name,omitempty"`
	UserEmail      string    `json:"user_email,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Record is a policy row joined with the names the API shows next to it.
type Record struct {
	policyDatamodel.Policy `gorm:"embedded"`
	CategoryName           string  `gorm:"column:category_name"`
	UserEmail              *string `gorm:"column:user_email"`
}

func ToDataModel(p *Policy) *policyDatamodel.Policy {
	return &policyDatamodel.Policy{
		ID:             p.ID,
		OrganizationID: p.OrganizationID,
		CategoryID:     p.CategoryID,
		UserID:         p.Scope.UserIDPtr(),
		MaxAmount:      p.MaxAmount,
		Period:         string(p.Period),
		AutoApprove:    p.AutoApprove,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func FromDataModel(p *policyDatamodel.Policy) *Policy {
	return &Policy{
		ID:             p.ID,
		OrganizationID: p.OrganizationID,
		CategoryID:     p.CategoryID,
		Scope:          ScopeFromUserID(p.UserID),
		MaxAmount:      p.MaxAmount,
		Period:         Period(p.Period),
		AutoApprove:    p.AutoApprove,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func FromRecord(r *Record) *Policy {
	p := FromDataModel(&r.Policy)
	p.CategoryName = r.CategoryName
	if r.UserEmail != nil {
		p.UserEmail = *r.UserEmail
	}
	return p
}
