package policy

import (
	"github.com/frahmantamala/expense-reimbursement/internal"
	"github.com/frahmantamala/expense-reimbursement/internal/core/common/validation"
)

type CreatePolicyDTO struct {
	CategoryID  int64  `json:"category_id"`
	UserID      *int64 `json:"user_id,omitempty"`
	MaxAmount   int64  `json:"max_amount"`
	Period      Period `json:"period"`
	AutoApprove bool   `json:"auto_approve"`
}

func (d CreatePolicyDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("category_id", d.CategoryID).Required()
	if d.UserID != nil {
		v.Field("user_id", *d.UserID).Positive(internal.ErrCodeValidationFailed)
	}
	v.Field("max_amount", d.MaxAmount).Positive(internal.ErrCodeInvalidAmount)
	v.Field("period", string(d.Period)).OneOf(string(PeriodMonthly), string(PeriodYearly))
	return v.Validate()
}

func (d CreatePolicyDTO) Scope() Scope {
	return ScopeFromUserID(d.UserID)
}

// UpdatePolicyDTO changes limits only. Scope and category are fixed once a
// policy exists.
type UpdatePolicyDTO struct {
	MaxAmount   int64  `json:"max_amount"`
	Period      Period `json:"period"`
	AutoApprove bool   `json:"auto_approve"`
}

func (d UpdatePolicyDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("max_amount", d.MaxAmount).Positive(internal.ErrCodeInvalidAmount)
	v.Field("period", string(d.Period)).OneOf(string(PeriodMonthly), string(PeriodYearly))
	return v.Validate()
}

type PoliciesResponse struct {
	Policies []*Policy `json:"policies"`
}
