package cmd

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/frahmantamala/expense-reimbursement/internal/auth"
	categoryDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/category"
	expenseDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/expense"
	orgDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/organization"
	policyDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/policy"
	userDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/user"
	"github.com/frahmantamala/expense-reimbursement/internal/policy"
)

const seedPassword = "password"

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with a demo organization, two users, categories and policies.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		setupLogger(cfg)

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gormDB, err := openGorm(db)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if err := seed(context.Background(), gormDB, cfg.Security.BCryptCost, clearData, cmd.OutOrStdout()); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	},
}

type seedUser struct {
	Email string
	Name  string
	Role  auth.Role
}

var seedUsers = []seedUser{
	{Email: "admin@acme.test", Name: "Ada Admin", Role: auth.RoleAdmin},
	{Email: "member@acme.test", Name: "Max Member", Role: auth.RoleMember},
}

var seedCategories = []struct {
	Name string
	Desc string
}{
	{"Travel", "Flights, trains and lodging"},
	{"Meals", "Client and team meals"},
	{"Office", "Supplies and equipment"},
}

// seed is idempotent: rows that already exist are left untouched.
func seed(ctx context.Context, db *gorm.DB, bcryptCost int, clear bool, out io.Writer) error {
	hash, err := auth.HashPassword(seedPassword, bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if clear {
			if err := clearTables(tx); err != nil {
				return err
			}
			fmt.Fprintln(out, "Cleared existing data")
		}

		var org orgDatamodel.Organization
		if err := tx.Where(orgDatamodel.Organization{Name: "Acme"}).FirstOrCreate(&org).Error; err != nil {
			return fmt.Errorf("seed organization: %w", err)
		}
		fmt.Fprintln(out, "Seeded organization:", org.Name)

		users := make(map[auth.Role]int64, len(seedUsers))
		for _, su := range seedUsers {
			u := userDatamodel.User{Email: su.Email}
			if err := tx.Where("email = ?", su.Email).
				Attrs(userDatamodel.User{Name: su.Name, PasswordHash: hash, IsActive: true}).
				FirstOrCreate(&u).Error; err != nil {
				return fmt.Errorf("seed user %s: %w", su.Email, err)
			}
			users[su.Role] = u.ID

			var m orgDatamodel.Membership
			if err := tx.Where("organization_id = ? AND user_id = ?", org.ID, u.ID).
				Attrs(orgDatamodel.Membership{OrganizationID: org.ID, UserID: u.ID, Role: string(su.Role)}).
				FirstOrCreate(&m).Error; err != nil {
				return fmt.Errorf("seed membership %s: %w", su.Email, err)
			}
			fmt.Fprintf(out, "Seeded user %s (%s)\n", su.Email, su.Role)
		}

		categories := make(map[string]int64, len(seedCategories))
		for _, c := range seedCategories {
			desc := c.Desc
			cat := categoryDatamodel.ExpenseCategory{}
			if err := tx.Where("organization_id = ? AND name = ?", org.ID, c.Name).
				Attrs(categoryDatamodel.ExpenseCategory{OrganizationID: org.ID, Name: c.Name, Description: &desc}).
				FirstOrCreate(&cat).Error; err != nil {
				return fmt.Errorf("seed category %s: %w", c.Name, err)
			}
			categories[c.Name] = cat.ID
		}
		fmt.Fprintln(out, "Seeded expense categories")

		memberID := users[auth.RoleMember]
		policies := []policyDatamodel.Policy{
			{OrganizationID: org.ID, CategoryID: categories["Travel"], MaxAmount: 50000, Period: string(policy.PeriodMonthly), AutoApprove: true},
			{OrganizationID: org.ID, CategoryID: categories["Travel"], UserID: &memberID, MaxAmount: 75000, Period: string(policy.PeriodMonthly), AutoApprove: true},
			{OrganizationID: org.ID, CategoryID: categories["Meals"], MaxAmount: 10000, Period: string(policy.PeriodMonthly), AutoApprove: false},
			{OrganizationID: org.ID, CategoryID: categories["Office"], MaxAmount: 200000, Period: string(policy.PeriodYearly), AutoApprove: false},
		}
		for _, p := range policies {
			q := tx.Model(&policyDatamodel.Policy{}).Where("organization_id = ? AND category_id = ?", p.OrganizationID, p.CategoryID)
			if p.UserID == nil {
				q = q.Where("user_id IS NULL")
			} else {
				q = q.Where("user_id = ?", *p.UserID)
			}
			var count int64
			if err := q.Count(&count).Error; err != nil {
				return fmt.Errorf("check policy: %w", err)
			}
			if count > 0 {
				continue
			}
			row := p
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("seed policy: %w", err)
			}
		}
		fmt.Fprintln(out, "Seeded policies")
		return nil
	})
}

func clearTables(tx *gorm.DB) error {
	for _, model := range []interface{}{
		&expenseDatamodel.ExpenseReview{},
		&expenseDatamodel.Expense{},
		&policyDatamodel.Policy{},
		&categoryDatamodel.ExpenseCategory{},
		&orgDatamodel.Membership{},
		&orgDatamodel.Organization{},
		&userDatamodel.User{},
	} {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}
