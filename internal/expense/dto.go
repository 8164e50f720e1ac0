package expense

import (
	"time"

	"github.com/frahmantamala/expense-reimbursement/internal"
	"github.com/frahmantamala/expense-reimbursement/internal/core/common/validation"
)

const DateLayout = "2006-01-02"

// SubmitExpenseDTO is the request body of POST /organizations/{orgId}/expenses.
// OrganizationID comes from the path.
type SubmitExpenseDTO struct {
	OrganizationID int64  `json:"-"`
	CategoryID     int64  `json:"category_id"`
	Amount         int64  `json:"amount"`
	Date           string `json:"date"`
	Description    string `json:"description"`
}

// ParseDate accepts a calendar date or a full RFC 3339 timestamp.
func ParseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// Validate checks the input against now and returns the parsed date.
func (d SubmitExpenseDTO) Validate(now time.Time) (time.Time, *internal.AppError) {
	required := validation.NewValidator()
	required.Field("category_id", d.CategoryID).Required()

	var dateErr *internal.AppError
	date, err := ParseDate(d.Date)
	if err != nil {
		dateErr = internal.NewValidationFieldError("date", "date must be formatted as YYYY-MM-DD", internal.ErrCodeInvalidDate)
	} else {
		// compare calendar days in the server's zone
		date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, now.Location())
		dateErr = validation.ValidateExpenseDate(date, now)
	}

	return date, validation.Merge(
		required.Validate(),
		validation.ValidateExpenseAmount(d.Amount),
		dateErr,
		validation.ValidateExpenseDescription(d.Description),
	)
}

// SubmitResult is what submitting returns: the stored expense and the
// disposition message.
type SubmitResult struct {
	Expense  *Expense `json:"expense"`
	Status   Status   `json:"status"`
	Message  string   `json:"message"`
	PolicyID *int64   `json:"policy_id,omitempty"`
}

type ListFilter struct {
	OrganizationID int64
	// UserID restricts the list to one submitter when set.
	UserID *int64
	Status *Status
}

type ExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}
