package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	expenseDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-reimbursement/internal/expense"
	expensePostgres "github.com/frahmantamala/expense-reimbursement/internal/expense/postgres"
	"github.com/frahmantamala/expense-reimbursement/internal/review"
)

type ReviewRepository struct {
	db       *gorm.DB
	expenses *expensePostgres.ExpenseRepository
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{
		db:       db,
		expenses: expensePostgres.NewExpenseRepository(db),
	}
}

var _ review.Repository = (*ReviewRepository)(nil)

func (r *ReviewRepository) GetExpense(ctx context.Context, id int64) (*expense.Expense, error) {
	return r.expenses.GetByID(ctx, id)
}

// Transition guards the status change with status = 'SUBMITTED' so that of
// two concurrent reviews only one updates the row. The loser sees zero rows
// affected and the transaction rolls back without a review row.
func (r *ReviewRepository) Transition(ctx context.Context, rv *expense.Review) (*expense.Expense, error) {
	var updated *expense.Expense

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&expenseDatamodel.Expense{}).
			Where("id = ? AND status = ?", rv.ExpenseID, string(expense.StatusSubmitted)).
			Updates(map[string]interface{}{
				"status":     string(rv.Status),
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return fmt.Errorf("update expense status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return review.ErrNotSubmitted
		}

		row := expense.ReviewToDataModel(rv)
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("insert review: %w", err)
		}
		rv.ID = row.ID
		rv.CreatedAt = row.CreatedAt

		var rec expense.Record
		if err := expensePostgres.Records(tx).Where("expenses.id = ?", rv.ExpenseID).Limit(1).Scan(&rec).Error; err != nil {
			return fmt.Errorf("reload expense: %w", err)
		}
		updated = expense.FromRecord(&rec)

		reviews, err := expensePostgres.LoadReviews(tx, rv.ExpenseID)
		if err != nil {
			return fmt.Errorf("reload reviews: %w", err)
		}
		updated.Reviews = reviews
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *ReviewRepository) ListPending(ctx context.Context, orgID int64) ([]*expense.Expense, error) {
	var recs []*expense.Record
	err := expensePostgres.Records(r.db.WithContext(ctx)).
		Where("expenses.organization_id = ? AND expenses.status = ?", orgID, string(expense.StatusSubmitted)).
		Order("expenses.created_at ASC, expenses.id ASC").
		Scan(&recs).Error
	if err != nil {
		return nil, err
	}
	return expense.FromRecordSlice(recs), nil
}
