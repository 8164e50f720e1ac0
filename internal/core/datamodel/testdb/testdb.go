// Package testdb opens an in-memory SQLite database carrying the full schema,
// for repository tests.
package testdb

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	categorydm "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/category"
	expensedm "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/expense"
	orgdm "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/organization"
	policydm "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/policy"
	userdm "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/user"
)

func Open() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// every connection to :memory: is a fresh database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&userdm.User{},
		&orgdm.Organization{},
		&orgdm.Membership{},
		&categorydm.ExpenseCategory{},
		&policydm.Policy{},
		&expensedm.Expense{},
		&expensedm.ExpenseReview{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	for _, stmt := range policydm.UniqueScopeIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return nil, fmt.Errorf("create policy index: %w", err)
		}
	}
	return db, nil
}

// Seed inserts rows in order and fails fast.
func Seed(db *gorm.DB, rows ...interface{}) error {
	for _, row := range rows {
		if err := db.Create(row).Error; err != nil {
			return err
		}
	}
	return nil
}
