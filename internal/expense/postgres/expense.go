package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	expenseDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-reimbursement/internal/expense"
)

type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

var _ expense.Repository = (*ExpenseRepository)(nil)

const recordColumns = "expenses.*, expense_categories.name AS category_name, users.email AS user_email"

// Records selects expenses joined with category name and submitter email.
// The review repository lists pending expenses through it too.
func Records(db *gorm.DB) *gorm.DB {
	return db.Model(&expenseDatamodel.Expense{}).
		Select(recordColumns).
		Joins("JOIN expense_categories ON expense_categories.id = expenses.category_id").
		Joins("LEFT JOIN users ON users.id = expenses.user_id")
}

func (r *ExpenseRepository) Create(ctx context.Context, e *expense.Expense, review *expense.Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := expense.ToDataModel(e)
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("insert expense: %w", err)
		}
		e.ID = row.ID
		e.CreatedAt = row.CreatedAt
		e.UpdatedAt = row.UpdatedAt

		if review == nil {
			return nil
		}
		review.ExpenseID = row.ID
		reviewRow := expense.ReviewToDataModel(review)
		if err := tx.Create(reviewRow).Error; err != nil {
			return fmt.Errorf("insert system review: %w", err)
		}
		review.ID = reviewRow.ID
		review.CreatedAt = reviewRow.CreatedAt
		return nil
	})
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*expense.Expense, error) {
	db := r.db.WithContext(ctx)

	var rec expense.Record
	res := Records(db).Where("expenses.id = ?", id).Limit(1).Scan(&rec)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	e := expense.FromRecord(&rec)

	reviews, err := LoadReviews(db, id)
	if err != nil {
		return nil, err
	}
	e.Reviews = reviews
	return e, nil
}

// LoadReviews returns the audit trail of an expense, oldest first.
func LoadReviews(db *gorm.DB, expenseID int64) ([]*expense.Review, error) {
	var rows []*expenseDatamodel.ExpenseReview
	err := db.Where("expense_id = ?", expenseID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	reviews := make([]*expense.Review, len(rows))
	for i, row := range rows {
		reviews[i] = expense.ReviewFromDataModel(row)
	}
	return reviews, nil
}

func (r *ExpenseRepository) List(ctx context.Context, filter expense.ListFilter) ([]*expense.Expense, error) {
	q := Records(r.db.WithContext(ctx)).Where("expenses.organization_id = ?", filter.OrganizationID)
	if filter.UserID != nil {
		q = q.Where("expenses.user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		q = q.Where("expenses.status = ?", string(*filter.Status))
	}

	var recs []*expense.Record
	if err := q.Order("expenses.created_at DESC, expenses.id DESC").Scan(&recs).Error; err != nil {
		return nil, err
	}
	return expense.FromRecordSlice(recs), nil
}
