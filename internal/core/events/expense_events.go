package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeExpenseSubmitted = "expense.submitted"
	EventTypeExpenseReviewed  = "expense.reviewed"
)

// ExpenseSubmittedEvent is emitted once the expense row (and the automatic
// review, if any) has been committed.
type ExpenseSubmittedEvent struct {
	BaseEvent
	ExpenseID      int64  `json:"expense_id"`
	OrganizationID int64  `json:"organization_id"`
	UserID         int64  `json:"user_id"`
	Amount         int64  `json:"amount"`
	Status         string `json:"status"`
	PolicyID       *int64 `json:"policy_id,omitempty"`
}

func NewExpenseSubmittedEvent(expenseID, orgID, userID, amount int64, status string, policyID *int64) *ExpenseSubmittedEvent {
	return &ExpenseSubmittedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeExpenseSubmitted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"expense_id":      expenseID,
				"organization_id": orgID,
				"user_id":         userID,
				"amount":          amount,
				"status":          status,
				"policy_id":       policyID,
			},
		},
		ExpenseID:      expenseID,
		OrganizationID: orgID,
		UserID:         userID,
		Amount:         amount,
		Status:         status,
		PolicyID:       policyID,
	}
}

type ExpenseReviewedEvent struct {
	BaseEvent
	ExpenseID      int64  `json:"expense_id"`
	OrganizationID int64  `json:"organization_id"`
	ReviewerID     int64  `json:"reviewer_id"`
	Status         string `json:"status"`
}

func NewExpenseReviewedEvent(expenseID, orgID, reviewerID int64, status string) *ExpenseReviewedEvent {
	return &ExpenseReviewedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeExpenseReviewed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"expense_id":      expenseID,
				"organization_id": orgID,
				"reviewer_id":     reviewerID,
				"status":          status,
			},
		},
		ExpenseID:      expenseID,
		OrganizationID: orgID,
		ReviewerID:     reviewerID,
		Status:         status,
	}
}
