package category_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/frahmantamala/expense-reimbursement/internal"
	"github.com/frahmantamala/expense-reimbursement/internal/auth"
	"github.com/frahmantamala/expense-reimbursement/internal/auth/authtest"
	"github.com/frahmantamala/expense-reimbursement/internal/category"
	categoryPostgres "github.com/frahmantamala/expense-reimbursement/internal/category/postgres"
	"github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/testdb"
	"github.com/frahmantamala/expense-reimbursement/internal/transport"
	"github.com/frahmantamala/expense-reimbursement/pkg/logger"
)

var _ = Describe("Category Handler Integration", func() {
	var (
		db     *gorm.DB
		router chi.Router
	)

	as := func(userID int64, req *http.Request) *http.Request {
		return req.WithContext(internal.ContextWithCaller(req.Context(), internal.Caller{ID: userID}))
	}

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())

		members := authtest.NewMemberships().
			Set(orgID, adminID, auth.RoleAdmin).
			Set(orgID, memberID, auth.RoleMember)

		repo := categoryPostgres.NewCategoryRepository(db)
		service := category.NewService(repo, members.Guard(), logger.Discard())
		handler := category.NewHandler(transport.NewBaseHandler(logger.Discard()), service)

		router = chi.NewRouter()
		router.Route("/organizations/{orgId}/categories", handler.Routes)
	})

	It("creates and then lists categories", func() {
		body, _ := json.Marshal(category.CategoryDTO{Name: "Travel"})
		req := as(adminID, httptest.NewRequest(http.MethodPost, "/organizations/1/categories/", bytes.NewReader(body)))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusCreated))

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, as(memberID, httptest.NewRequest(http.MethodGet, "/organizations/1/categories/", nil)))
		Expect(rec.Code).To(Equal(http.StatusOK))

		var resp category.CategoriesResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Categories).To(HaveLen(1))
		Expect(resp.Categories[0].Name).To(Equal("Travel"))
	})

	It("returns 403 with the error envelope for members creating categories", func() {
		body, _ := json.Marshal(category.CategoryDTO{Name: "Travel"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, as(memberID, httptest.NewRequest(http.MethodPost, "/organizations/1/categories/", bytes.NewReader(body))))

		Expect(rec.Code).To(Equal(http.StatusForbidden))
		var envelope map[string]map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &envelope)).To(Succeed())
		Expect(envelope["error"]["type"]).To(Equal("FORBIDDEN"))
		Expect(envelope["error"]["message"]).To(Equal("Only admins can create categories"))
	})

	It("returns 404 for unknown categories", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, as(memberID, httptest.NewRequest(http.MethodGet, "/organizations/1/categories/42", nil)))
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("returns 401 without a caller", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/organizations/1/categories/", nil).WithContext(context.Background()))
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("returns 400 for a non-numeric organization id", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, as(memberID, httptest.NewRequest(http.MethodGet, "/organizations/abc/categories/", nil)))
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})
})
