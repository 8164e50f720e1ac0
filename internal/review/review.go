package review

import (
	"context"
	"errors"

	"github.com/frahmantamala/expense-reimbursement/internal"
	"github.com/frahmantamala/expense-reimbursement/internal/auth"
	"github.com/frahmantamala/expense-reimbursement/internal/expense"
)

type Repository interface {
	// GetExpense returns nil, nil when the expense does not exist.
	GetExpense(ctx context.Context, id int64) (*expense.Expense, error)
	// Transition moves a SUBMITTED expense to review.Status and appends review
	// in one transaction. It returns ErrNotSubmitted, writing nothing, when
	// the expense is no longer SUBMITTED at write time.
	Transition(ctx context.Context, review *expense.Review) (*expense.Expense, error)
	ListPending(ctx context.Context, orgID int64) ([]*expense.Expense, error)
}

type Authorizer interface {
	RequireAdmin(ctx context.Context, orgID, callerID int64, deniedMessage string) error
}

var _ Authorizer = (*auth.Guard)(nil)

// ErrNotSubmitted is returned by repositories when the conditional status
// update matched no row.
var ErrNotSubmitted = errors.New("expense is not in SUBMITTED status")

var (
	ErrExpenseNotFound = internal.NewNotFoundError("Expense not found", internal.ErrCodeExpenseNotFound)
	ErrCannotApprove   = internal.NewInvalidStateError("Only submitted expenses can be approved", internal.ErrCodeInvalidExpenseStatus)
	ErrCannotReject    = internal.NewInvalidStateError("Only submitted expenses can be rejected", internal.ErrCodeInvalidExpenseStatus)
)

// action describes one manual transition out of SUBMITTED.
type action struct {
	target        expense.Status
	deniedMessage string
	invalidState  *internal.AppError
}

var (
	approve = action{
		target:        expense.StatusApproved,
		deniedMessage: "Only admins can approve expenses",
		invalidState:  ErrCannotApprove,
	}
	reject = action{
		target:        expense.StatusRejected,
		deniedMessage: "Only admins can reject expenses",
		invalidState:  ErrCannotReject,
	}
)
