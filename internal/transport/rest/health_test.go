package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("HealthHandler", func() {
	const versionQuery = "SELECT COALESCE(MAX(version_id), 0) FROM schema_migrations WHERE is_applied"

	var (
		db   *sqlx.DB
		mock sqlmock.Sqlmock
	)

	BeforeEach(func() {
		raw, m, err := sqlmock.New(
			sqlmock.MonitorPingsOption(true),
			sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
		)
		Expect(err).NotTo(HaveOccurred())
		db, mock = sqlx.NewDb(raw, "sqlmock"), m
		DeferCleanup(func() {
			m.ExpectClose()
			Expect(raw.Close()).To(Succeed())
			Expect(m.ExpectationsWereMet()).To(Succeed())
		})
	})

	serve := func(h *HealthHandler) (*httptest.ResponseRecorder, HealthResponse) {
		rec := httptest.NewRecorder()
		h.healthCheckHandler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
		var resp HealthResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		return rec, resp
	}

	It("is healthy when every check passes", func() {
		mock.ExpectPing()
		mock.ExpectQuery(versionQuery).WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow(5))

		rec, resp := serve(NewHealthHandler(map[string]Check{
			"database":   DatabaseCheck(db),
			"migrations": MigrationsCheck(db, "schema_migrations", 5),
		}))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(resp.Status).To(Equal(HealthHealthy))
		Expect(resp.Components["database"].Details).To(HaveKey("open_connections"))
		Expect(resp.Components["migrations"].Details).To(HaveKeyWithValue("latest", BeNumerically("==", 5)))
	})

	It("is unhealthy when the database does not answer", func() {
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		rec, resp := serve(NewHealthHandler(map[string]Check{"database": DatabaseCheck(db)}))

		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
		Expect(resp.Status).To(Equal(HealthUnhealthy))
		Expect(resp.Components["database"].Message).To(Equal("connection refused"))
	})

	It("flags pending migrations", func() {
		mock.ExpectQuery(versionQuery).WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow(3))

		rec, resp := serve(NewHealthHandler(map[string]Check{
			"migrations": MigrationsCheck(db, "schema_migrations", 5),
		}))

		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
		Expect(resp.Components["migrations"].Message).To(Equal("2 pending migration(s)"))
		Expect(resp.Components["migrations"].Details).To(HaveKeyWithValue("version", BeNumerically("==", 3)))
	})

	It("skips the comparison when the latest version is unknown", func() {
		mock.ExpectQuery(versionQuery).WillReturnRows(sqlmock.NewRows([]string{"v"}).AddRow(2))

		rec, resp := serve(NewHealthHandler(map[string]Check{
			"migrations": MigrationsCheck(db, "schema_migrations", 0),
		}))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(resp.Components["migrations"].Details).NotTo(HaveKey("latest"))
	})

	It("answers the liveness probe without touching the database", func() {
		rec := httptest.NewRecorder()
		NewHealthHandler(nil).pingHandler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
		Expect(rec.Body.String()).To(ContainSubstring(`"status":"OK"`))
	})
})
