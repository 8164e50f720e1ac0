package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"

	"github.com/frahmantamala/expense-reimbursement/internal/auth"
	"github.com/frahmantamala/expense-reimbursement/internal/category"
	"github.com/frahmantamala/expense-reimbursement/internal/expense"
	"github.com/frahmantamala/expense-reimbursement/internal/organization"
	"github.com/frahmantamala/expense-reimbursement/internal/policy"
	"github.com/frahmantamala/expense-reimbursement/internal/review"
	"github.com/frahmantamala/expense-reimbursement/internal/transport/middleware"
	"github.com/frahmantamala/expense-reimbursement/internal/transport/swagger"
	"github.com/frahmantamala/expense-reimbursement/internal/user"
)

type Handlers struct {
	Health       *HealthHandler
	Auth         *auth.Handler
	User         *user.Handler
	Organization *organization.Handler
	Category     *category.Handler
	Policy       *policy.Handler
	Expense      *expense.Handler
	Review       *review.Handler
	// Docs is nil when no OpenAPI document was loaded.
	Docs *swagger.Docs
}

type Options struct {
	AllowedOrigins []string
}

func RegisterAllRoutes(router chi.Router, h Handlers, opts Options, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	if len(opts.AllowedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.TraceIDHeader},
			ExposedHeaders:   []string{middleware.TraceIDHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	if h.Docs != nil {
		router.Get("/openapi.yml", h.Docs.ServeSpec)
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health.healthCheckHandler)
		r.Get("/ping", h.Health.pingHandler)

		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/login", h.Auth.Login)
			ar.Post("/refresh", h.Auth.RefreshToken)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			pr.Use(middleware.UserContext)

			pr.Get("/users/me", h.User.GetCurrentUser)

			pr.Route("/organizations", func(or chi.Router) {
				h.Organization.Routes(or)
				or.Route("/{orgId}/categories", h.Category.Routes)
				or.Route("/{orgId}/policies", h.Policy.OrganizationRoutes)
				or.Route("/{orgId}/expenses", h.Expense.OrganizationRoutes)
				or.Route("/{orgId}/reviews", h.Review.OrganizationRoutes)
			})

			pr.Route("/policies", h.Policy.Routes)

			// approve and reject live next to the expense reads
			pr.Route("/expenses", func(er chi.Router) {
				h.Expense.Routes(er)
				h.Review.ExpenseRoutes(er)
			})
		})
	})
}
