package expense

import "time"

type Expense struct {
	ID             int64     `gorm:"primaryKey"`
	OrganizationID int64     `gorm:"column:organization_id;not null;index:idx_expense_org_status"`
	UserID         int64     `gorm:"column:user_id;not null"`
	CategoryID     int64     `gorm:"column:category_id;not null"`
	Amount         int64     `gorm:"column:amount;not null"`
	Date           time.Time `gorm:"column:date;not null"`
	Description    string    `gorm:"column:description;not null"`
	Status         string    `gorm:"column:status;not null;default:SUBMITTED;index:idx_expense_org_status"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// ExpenseReview rows are append-only. A nil ReviewerID marks a decision taken
// by the policy engine.
type ExpenseReview struct {
	ID         int64     `gorm:"primaryKey"`
	ExpenseID  int64     `gorm:"column:expense_id;not null;index"`
	ReviewerID *int64    `gorm:"column:reviewer_id"`
	Status     string    `gorm:"column:status;not null"`
	Comment    *string   `gorm:"column:comment"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
