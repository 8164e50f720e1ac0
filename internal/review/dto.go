package review

import (
	"github.com/frahmantamala/expense-reimbursement/internal"
	"github.com/frahmantamala/expense-reimbursement/internal/core/common/validation"
	"github.com/frahmantamala/expense-reimbursement/internal/expense"
)

// DecisionDTO is the optional body of approve and reject requests.
type DecisionDTO struct {
	Comment *string `json:"comment,omitempty"`
}

func (d DecisionDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("comment", d.Comment).MaxLength(1000, internal.ErrCodeValidationFailed)
	return v.Validate()
}

type PendingResponse struct {
	Expenses []*expense.Expense `json:"expenses"`
}
