package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/frahmantamala/expense-reimbursement/internal"
	"github.com/frahmantamala/expense-reimbursement/internal/auth"
	categoryDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/category"
	orgDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/organization"
	"github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/testdb"
	"github.com/frahmantamala/expense-reimbursement/internal/core/events"
	"github.com/frahmantamala/expense-reimbursement/internal/expense"
	"github.com/frahmantamala/expense-reimbursement/internal/review"
	"github.com/frahmantamala/expense-reimbursement/internal/transport/rest"
	"github.com/frahmantamala/expense-reimbursement/pkg/logger"
)

var _ = Describe("HTTP server", func() {
	var (
		db       *gorm.DB
		router   *chi.Mux
		orgID    int64
		travelID int64
		mealsID  int64
	)

	send := func(token, method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	login := func(email string) string {
		rec := send("", http.MethodPost, "/api/v1/auth/login", auth.LoginDTO{Email: email, Password: seedPassword})
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		var tokens auth.AuthTokens
		Expect(json.Unmarshal(rec.Body.Bytes(), &tokens)).To(Succeed())
		Expect(tokens.AccessToken).NotTo(BeEmpty())
		return tokens.AccessToken
	}

	submit := func(token string, categoryID, amount int64) expense.SubmitResult {
		path := "/api/v1/organizations/" + strconv.FormatInt(orgID, 10) + "/expenses"
		rec := send(token, http.MethodPost, path, expense.SubmitExpenseDTO{
			CategoryID:  categoryID,
			Amount:      amount,
			Date:        "2024-01-10",
			Description: "client visit",
		})
		Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())
		var result expense.SubmitResult
		Expect(json.Unmarshal(rec.Body.Bytes(), &result)).To(Succeed())
		return result
	}

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		Expect(seed(context.Background(), db, bcrypt.MinCost, false, &bytes.Buffer{})).To(Succeed())

		var org orgDatamodel.Organization
		Expect(db.Where("name = ?", "Acme").First(&org).Error).To(Succeed())
		orgID = org.ID

		var travel, meals categoryDatamodel.ExpenseCategory
		Expect(db.Where("organization_id = ? AND name = ?", orgID, "Travel").First(&travel).Error).To(Succeed())
		Expect(db.Where("organization_id = ? AND name = ?", orgID, "Meals").First(&meals).Error).To(Succeed())
		travelID, mealsID = travel.ID, meals.ID

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())

		Expect(db.Exec(`CREATE TABLE ` + migrationsTable + ` (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			version_id INTEGER NOT NULL,
			is_applied BOOLEAN NOT NULL,
			tstamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP)`).Error).To(Succeed())
		for v := 0; v <= 5; v++ {
			Expect(db.Exec(`INSERT INTO `+migrationsTable+` (version_id, is_applied) VALUES (?, ?)`, v, true).Error).To(Succeed())
		}

		cfg := &internal.Config{
			Server:   internal.ServerConfig{OpenAPIPath: "../api/openapi.yml"},
			Database: internal.DatabaseConfig{MigrationsDir: "../db/migrations"},
			Security: internal.SecurityConfig{
				JWTAccessSecret:      "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
				JWTRefreshSecret:     "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
				AccessTokenDuration:  15 * time.Minute,
				RefreshTokenDuration: time.Hour,
				BCryptCost:           bcrypt.MinCost,
			},
		}

		router = chi.NewRouter()
		bus := events.NewEventBus(logger.Discard())
		setupRoutes(&Dependencies{
			Config: cfg,
			DB:     sqlx.NewDb(sqlDB, "sqlite3"),
			Gorm:   db,
			Bus:    bus,
			Router: router,
			Logger: logger.Discard(),
		})

		DeferCleanup(func() {
			Expect(bus.Wait(context.Background())).To(Succeed())
			_ = sqlDB.Close()
		})
	})

	It("reports health without a token", func() {
		rec := send("", http.MethodGet, "/api/v1/health", nil)
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())

		var health rest.HealthResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &health)).To(Succeed())
		Expect(health.Components).To(HaveKey("database"))
		Expect(health.Components["migrations"].Details).To(HaveKeyWithValue("version", BeNumerically("==", 5)))
	})

	It("turns unhealthy when the schema is behind the migration files", func() {
		Expect(db.Exec(`DELETE FROM `+migrationsTable+` WHERE version_id = 5`).Error).To(Succeed())

		rec := send("", http.MethodGet, "/api/v1/health", nil)
		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
		Expect(rec.Body.String()).To(ContainSubstring("1 pending migration(s)"))
	})

	It("serves the OpenAPI document", func() {
		rec := send("", http.MethodGet, "/openapi.yml", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("openapi: 3.0.3"))
	})

	It("rejects protected routes without a token", func() {
		rec := send("", http.MethodGet, "/api/v1/users/me", nil)
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("rejects a wrong password", func() {
		rec := send("", http.MethodPost, "/api/v1/auth/login", auth.LoginDTO{Email: "member@acme.test", Password: "nope"})
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("returns the caller profile", func() {
		rec := send(login("member@acme.test"), http.MethodGet, "/api/v1/users/me", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("member@acme.test"))
	})

	It("runs an expense from submission through review", func() {
		member := login("member@acme.test")
		admin := login("admin@acme.test")

		By("auto-approving under the member's own Travel limit")
		result := submit(member, travelID, 60000)
		Expect(result.Status).To(Equal(expense.StatusApproved))

		By("auto-rejecting above it")
		result = submit(member, travelID, 80000)
		Expect(result.Status).To(Equal(expense.StatusRejected))

		By("leaving a Meals expense for manual review")
		result = submit(member, mealsID, 5000)
		Expect(result.Status).To(Equal(expense.StatusSubmitted))
		pendingID := result.Expense.ID

		By("hiding the pending queue from members")
		pendingPath := "/api/v1/organizations/" + strconv.FormatInt(orgID, 10) + "/reviews/pending"
		Expect(send(member, http.MethodGet, pendingPath, nil).Code).To(Equal(http.StatusForbidden))

		By("listing it for the admin")
		rec := send(admin, http.MethodGet, pendingPath, nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		var pending review.PendingResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &pending)).To(Succeed())
		Expect(pending.Expenses).To(HaveLen(1))
		Expect(pending.Expenses[0].ID).To(Equal(pendingID))

		By("approving it once")
		approvePath := "/api/v1/expenses/" + strconv.FormatInt(pendingID, 10) + "/approve"
		rec = send(admin, http.MethodPost, approvePath, nil)
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		var approved expense.Expense
		Expect(json.Unmarshal(rec.Body.Bytes(), &approved)).To(Succeed())
		Expect(approved.Status).To(Equal(expense.StatusApproved))

		rec = send(admin, http.MethodPost, approvePath, nil)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))

		By("showing the review history on the expense")
		rec = send(member, http.MethodGet, "/api/v1/expenses/"+strconv.FormatInt(pendingID, 10), nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		var detail expense.Expense
		Expect(json.Unmarshal(rec.Body.Bytes(), &detail)).To(Succeed())
		Expect(detail.Status).To(Equal(expense.StatusApproved))
		Expect(detail.Reviews).NotTo(BeEmpty())
	})
})
