package cmd

import (
	"bytes"
	"context"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	categoryDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/category"
	orgDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/organization"
	policyDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/policy"
	"github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/testdb"
	userDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/user"
	"github.com/frahmantamala/expense-reimbursement/internal/policy"
	policyPostgres "github.com/frahmantamala/expense-reimbursement/internal/policy/postgres"
)

var _ = Describe("seed", func() {
	var db *gorm.DB

	count := func(model interface{}) int64 {
		var n int64
		Expect(db.Model(model).Count(&n).Error).To(Succeed())
		return n
	}

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			sqlDB, _ := db.DB()
			_ = sqlDB.Close()
		})
	})

	It("creates the demo data", func() {
		var out bytes.Buffer
		Expect(seed(context.Background(), db, bcrypt.MinCost, false, &out)).To(Succeed())

		Expect(count(&orgDatamodel.Organization{})).To(Equal(int64(1)))
		Expect(count(&userDatamodel.User{})).To(Equal(int64(2)))
		Expect(count(&orgDatamodel.Membership{})).To(Equal(int64(2)))
		Expect(count(&categoryDatamodel.ExpenseCategory{})).To(Equal(int64(3)))
		Expect(count(&policyDatamodel.Policy{})).To(Equal(int64(4)))
		Expect(out.String()).To(ContainSubstring("Seeded user admin@acme.test (ADMIN)"))
	})

	It("is idempotent", func() {
		Expect(seed(context.Background(), db, bcrypt.MinCost, false, &bytes.Buffer{})).To(Succeed())
		Expect(seed(context.Background(), db, bcrypt.MinCost, false, &bytes.Buffer{})).To(Succeed())

		Expect(count(&userDatamodel.User{})).To(Equal(int64(2)))
		Expect(count(&orgDatamodel.Membership{})).To(Equal(int64(2)))
		Expect(count(&policyDatamodel.Policy{})).To(Equal(int64(4)))
	})

	It("clears existing rows first when asked", func() {
		extra := &userDatamodel.User{Email: "stray@example.com", Name: "Stray", PasswordHash: "x", IsActive: true}
		Expect(testdb.Seed(db, extra)).To(Succeed())

		var out bytes.Buffer
		Expect(seed(context.Background(), db, bcrypt.MinCost, true, &out)).To(Succeed())

		Expect(out.String()).To(HavePrefix("Cleared existing data"))
		Expect(count(&userDatamodel.User{})).To(Equal(int64(2)))
	})

	Describe("policy debug", func() {
		It("prints the user-specific policy as the winner", func() {
			Expect(seed(context.Background(), db, bcrypt.MinCost, false, &bytes.Buffer{})).To(Succeed())

			var org orgDatamodel.Organization
			Expect(db.First(&org).Error).To(Succeed())
			var member userDatamodel.User
			Expect(db.Where("email = ?", "member@acme.test").First(&member).Error).To(Succeed())
			var travel categoryDatamodel.ExpenseCategory
			Expect(db.Where("name = ?", "Travel").First(&travel).Error).To(Succeed())

			DeferCleanup(func() { debugOrgID, debugUserID, debugCategoryID = 0, 0, 0 })
			debugOrgID, debugUserID, debugCategoryID = org.ID, member.ID, travel.ID

			var out bytes.Buffer
			cmd := &cobra.Command{}
			cmd.SetOut(&out)

			resolver := policy.NewResolver(policyPostgres.NewPolicyRepository(db))
			Expect(printPolicyDebug(cmd, resolver)).To(Succeed())

			var debug policy.Debug
			Expect(json.Unmarshal(out.Bytes(), &debug)).To(Succeed())
			Expect(debug.UserSpecificPolicy).NotTo(BeNil())
			Expect(debug.OrganizationPolicy).NotTo(BeNil())
			Expect(debug.SelectedPolicy).NotTo(BeNil())
			Expect(debug.SelectedPolicy.MaxAmount).To(Equal(int64(75000)))
			Expect(debug.Reason).NotTo(BeEmpty())
		})

		It("rejects a non-positive user id before touching the database", func() {
			DeferCleanup(func() { debugOrgID, debugUserID, debugCategoryID = 0, 0, 0 })
			debugOrgID, debugUserID, debugCategoryID = 1, 0, 1

			var out bytes.Buffer
			cmd := &cobra.Command{}
			cmd.SetOut(&out)

			err := printPolicyDebug(cmd, policy.NewResolver(policyPostgres.NewPolicyRepository(db)))
			Expect(err).To(MatchError("--user must be a positive id, got 0"))
			Expect(out.String()).To(BeEmpty())
		})
	})
})
