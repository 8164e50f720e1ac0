package organization_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/frahmantamala/expense-reimbursement/internal"
	"github.com/frahmantamala/expense-reimbursement/internal/auth"
	authPostgres "github.com/frahmantamala/expense-reimbursement/internal/auth/postgres"
	"github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/testdb"
	userDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/user"
	"github.com/frahmantamala/expense-reimbursement/internal/organization"
	orgPostgres "github.com/frahmantamala/expense-reimbursement/internal/organization/postgres"
	"github.com/frahmantamala/expense-reimbursement/internal/transport"
	"github.com/frahmantamala/expense-reimbursement/internal/user"
	userPostgres "github.com/frahmantamala/expense-reimbursement/internal/user/postgres"
	"github.com/frahmantamala/expense-reimbursement/pkg/logger"
)

var _ = Describe("Organization Handler Integration", func() {
	var (
		db               *gorm.DB
		router           chi.Router
		alice, bob, dave *userDatamodel.User
	)

	as := func(userID int64, req *http.Request) *http.Request {
		return req.WithContext(internal.ContextWithCaller(req.Context(), internal.Caller{ID: userID}))
	}

	do := func(userID int64, method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, as(userID, httptest.NewRequest(method, path, &buf)))
		return rec
	}

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())

		alice = &userDatamodel.User{Email: "alice@example.com", Name: "Alice", PasswordHash: "x", IsActive: true}
		bob = &userDatamodel.User{Email: "bob@example.com", Name: "Bob", PasswordHash: "x", IsActive: true}
		dave = &userDatamodel.User{Email: "dave@example.com", Name: "Dave", PasswordHash: "x", IsActive: true}
		Expect(testdb.Seed(db, alice, bob, dave)).To(Succeed())

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		pool := sqlx.NewDb(sqlDB, "sqlite3")

		guard := auth.NewGuard(authPostgres.NewMembershipReader(pool), logger.Discard())
		users := user.NewService(userPostgres.NewRepository(pool), logger.Discard())
		service := organization.NewService(orgPostgres.NewOrganizationRepository(db), users, guard, logger.Discard())
		handler := organization.NewHandler(transport.NewBaseHandler(logger.Discard()), service)

		router = chi.NewRouter()
		router.Route("/organizations", handler.Routes)
	})

	AfterEach(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	createOrg := func() int64 {
		rec := do(alice.ID, http.MethodPost, "/organizations/", organization.OrganizationDTO{Name: "Acme"})
		Expect(rec.Code).To(Equal(http.StatusCreated))
		var org organization.Organization
		Expect(json.Unmarshal(rec.Body.Bytes(), &org)).To(Succeed())
		return org.ID
	}

	It("creates an organization and shows the creator as admin", func() {
		id := createOrg()

		rec := do(alice.ID, http.MethodGet, "/organizations/", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		var list organization.OrganizationsResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &list)).To(Succeed())
		Expect(list.Organizations).To(HaveLen(1))
		Expect(list.Organizations[0].ID).To(Equal(id))
		Expect(list.Organizations[0].Role).To(Equal(auth.RoleAdmin))
	})

	It("invites by email and lists members oldest first", func() {
		id := createOrg()
		path := "/organizations/" + itoa(id)

		rec := do(alice.ID, http.MethodPost, path+"/members", organization.InviteUserDTO{Email: "BOB@example.com"})
		Expect(rec.Code).To(Equal(http.StatusCreated))

		rec = do(alice.ID, http.MethodPost, path+"/members", organization.InviteUserDTO{Email: "bob@example.com"})
		Expect(rec.Code).To(Equal(http.StatusConflict))

		rec = do(bob.ID, http.MethodGet, path+"/members", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		var resp organization.MembersResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Members).To(HaveLen(2))
		Expect(resp.Members[0].Email).To(Equal("alice@example.com"))
		Expect(resp.Members[1].Role).To(Equal(auth.RoleMember))
	})

	It("returns the caller's role in the organization detail", func() {
		id := createOrg()
		path := "/organizations/" + itoa(id)
		Expect(do(alice.ID, http.MethodPost, path+"/members", organization.InviteUserDTO{Email: "bob@example.com"}).Code).
			To(Equal(http.StatusCreated))

		rec := do(bob.ID, http.MethodGet, path, nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		var detail organization.Detail
		Expect(json.Unmarshal(rec.Body.Bytes(), &detail)).To(Succeed())
		Expect(detail.CurrentUserRole).To(Equal(auth.RoleMember))

		rec = do(dave.ID, http.MethodGet, path, nil)
		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	It("changes roles and removes members", func() {
		id := createOrg()
		path := "/organizations/" + itoa(id)
		Expect(do(alice.ID, http.MethodPost, path+"/members", organization.InviteUserDTO{Email: "bob@example.com"}).Code).
			To(Equal(http.StatusCreated))

		rec := do(alice.ID, http.MethodPut, path+"/members/"+itoa(bob.ID)+"/role", organization.UpdateMemberRoleDTO{Role: auth.RoleAdmin})
		Expect(rec.Code).To(Equal(http.StatusOK))

		rec = do(bob.ID, http.MethodGet, path+"/membership", nil)
		var m organization.Member
		Expect(json.Unmarshal(rec.Body.Bytes(), &m)).To(Succeed())
		Expect(m.Role).To(Equal(auth.RoleAdmin))

		rec = do(alice.ID, http.MethodDelete, path+"/members/"+itoa(alice.ID), nil)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))

		rec = do(alice.ID, http.MethodDelete, path+"/members/"+itoa(bob.ID), nil)
		Expect(rec.Code).To(Equal(http.StatusNoContent))

		rec = do(bob.ID, http.MethodGet, path+"/membership", nil)
		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	It("returns 404 when inviting an unknown email", func() {
		id := createOrg()
		rec := do(alice.ID, http.MethodPost, "/organizations/"+itoa(id)+"/members", organization.InviteUserDTO{Email: "ghost@example.com"})
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})
})

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
