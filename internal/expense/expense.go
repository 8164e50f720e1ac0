package expense

import (
	"time"

	expenseDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/expense"
)

type Status string

const (
	StatusSubmitted Status = "SUBMITTED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusSubmitted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type Expense struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organization_id"`
	UserID         int64     `json:"user_id"`
	CategoryID     int64     `json:"category_id"`
	Amount         int64     `json:"amount"`
	Date           time.Time `json:"date"`
	Description    string    `json:"description"`
	Status         Status    `json:"status"`
	CategoryName   string    `json:"category_name,omitempty"`
	UserEmail      string    `json:"user_email,omitempty"`
	Reviews        []*Review `json:"reviews,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (e *Expense) CanBeReviewed() bool {
	return e.Status == StatusSubmitted
}

// Review is one entry of an expense's audit trail. ReviewerID is nil when the
// decision was taken automatically at submission.
type Review struct {
	ID         int64     `json:"id"`
	ExpenseID  int64     `json:"expense_id"`
	ReviewerID *int64    `json:"reviewer_id"`
	Status     Status    `json:"status"`
	Comment    *string   `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r *Review) IsSystem() bool {
	return r.ReviewerID == nil
}

func NewSystemReview(status Status) *Review {
	return &Review{Status: status}
}

func NewManualReview(expenseID, reviewerID int64, status Status, comment *string) *Review {
	return &Review{
		ExpenseID:  expenseID,
		ReviewerID: &reviewerID,
		Status:     status,
		Comment:    comment,
	}
}

// Record is an expense row joined with its category name and submitter email.
type Record struct {
	expenseDatamodel.Expense `gorm:"embedded"`
	CategoryName             string  `gorm:"column:category_name"`
	UserEmail                *string `gorm:"column:user_email"`
}

func ToDataModel(e *Expense) *expenseDatamodel.Expense {
	return &expenseDatamodel.Expense{
		ID:             e.ID,
		OrganizationID: e.OrganizationID,
		UserID:         e.UserID,
		CategoryID:     e.CategoryID,
		Amount:         e.Amount,
		Date:           e.Date,
		Description:    e.Description,
		Status:         string(e.Status),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func FromDataModel(e *expenseDatamodel.Expense) *Expense {
	return &Expense{
		ID:             e.ID,
		OrganizationID: e.OrganizationID,
		UserID:         e.UserID,
		CategoryID:     e.CategoryID,
		Amount:         e.Amount,
		Date:           e.Date,
		Description:    e.Description,
		Status:         Status(e.Status),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func FromRecord(r *Record) *Expense {
	e := FromDataModel(&r.Expense)
	e.CategoryName = r.CategoryName
	if r.UserEmail != nil {
		e.UserEmail = *r.UserEmail
	}
	return e
}

func FromRecordSlice(records []*Record) []*Expense {
	result := make([]*Expense, len(records))
	for i, r := range records {
		result[i] = FromRecord(r)
	}
	return result
}

func ReviewToDataModel(r *Review) *expenseDatamodel.ExpenseReview {
	return &expenseDatamodel.ExpenseReview{
		ID:         r.ID,
		ExpenseID:  r.ExpenseID,
		ReviewerID: r.ReviewerID,
		Status:     string(r.Status),
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}

func ReviewFromDataModel(r *expenseDatamodel.ExpenseReview) *Review {
	return &Review{
		ID:         r.ID,
		ExpenseID:  r.ExpenseID,
		ReviewerID: r.ReviewerID,
		Status:     Status(r.Status),
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}
