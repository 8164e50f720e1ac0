package auth_test

import (
	"context"
	"errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/expense-reimbursement/internal/auth"
	authPostgres "github.com/frahmantamala/expense-reimbursement/internal/auth/postgres"
)

var _ = Describe("MembershipReader", func() {
	var (
		mock   sqlmock.Sqlmock
		reader *authPostgres.MembershipReader
	)

	const query = `SELECT role FROM memberships WHERE organization_id = $1 AND user_id = $2`

	BeforeEach(func() {
		db, m, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
		Expect(err).NotTo(HaveOccurred())
		mock = m
		reader = authPostgres.NewMembershipReader(sqlx.NewDb(db, "pgx"))
		DeferCleanup(func() {
			m.ExpectClose()
			Expect(db.Close()).To(Succeed())
			Expect(m.ExpectationsWereMet()).To(Succeed())
		})
	})

	It("returns the stored role", func() {
		mock.ExpectQuery(query).WithArgs(int64(4), int64(9)).
			WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("ADMIN"))

		role, err := reader.GetRole(context.Background(), 4, 9)
		Expect(err).NotTo(HaveOccurred())
		Expect(role).To(Equal(auth.RoleAdmin))
	})

	It("returns an empty role for non-members", func() {
		mock.ExpectQuery(query).WithArgs(int64(4), int64(9)).
			WillReturnRows(sqlmock.NewRows([]string{"role"}))

		role, err := reader.GetRole(context.Background(), 4, 9)
		Expect(err).NotTo(HaveOccurred())
		Expect(role).To(BeEmpty())
	})

	It("wraps driver errors", func() {
		mock.ExpectQuery(query).WithArgs(int64(4), int64(9)).
			WillReturnError(errors.New("connection reset"))

		_, err := reader.GetRole(context.Background(), 4, 9)
		Expect(err).To(MatchError(ContainSubstring("get membership role")))
	})
})
