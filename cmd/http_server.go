package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/expense-reimbursement/internal"
	"github.com/frahmantamala/expense-reimbursement/internal/auth"
	authPostgres "github.com/frahmantamala/expense-reimbursement/internal/auth/postgres"
	"github.com/frahmantamala/expense-reimbursement/internal/category"
	categoryPostgres "github.com/frahmantamala/expense-reimbursement/internal/category/postgres"
	"github.com/frahmantamala/expense-reimbursement/internal/core/events"
	"github.com/frahmantamala/expense-reimbursement/internal/expense"
	expensePostgres "github.com/frahmantamala/expense-reimbursement/internal/expense/postgres"
	"github.com/frahmantamala/expense-reimbursement/internal/organization"
	orgPostgres "github.com/frahmantamala/expense-reimbursement/internal/organization/postgres"
	"github.com/frahmantamala/expense-reimbursement/internal/policy"
	policyPostgres "github.com/frahmantamala/expense-reimbursement/internal/policy/postgres"
	"github.com/frahmantamala/expense-reimbursement/internal/review"
	reviewPostgres "github.com/frahmantamala/expense-reimbursement/internal/review/postgres"
	"github.com/frahmantamala/expense-reimbursement/internal/transport"
	"github.com/frahmantamala/expense-reimbursement/internal/transport/rest"
	"github.com/frahmantamala/expense-reimbursement/internal/transport/swagger"
	"github.com/frahmantamala/expense-reimbursement/internal/user"
	userPostgres "github.com/frahmantamala/expense-reimbursement/internal/user/postgres"
	"github.com/frahmantamala/expense-reimbursement/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

// Dependencies share one connection pool: sqlx for the hot lookups and gorm
// for repositories, both over the same *sql.DB.
type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Bus    *events.EventBus
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), deps.Config.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.Bus.Wait(ctx); err != nil {
			deps.Logger.Warn("event handlers still running at shutdown", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	setupLogger(config)
	log := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := openGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	bus := events.NewEventBus(log)
	if config.Observability.Audit.Enabled {
		events.SubscribeAudit(bus, log.With("component", "audit"))
	}

	deps := &Dependencies{
		Config: config,
		DB:     db,
		Gorm:   gormDB,
		Bus:    bus,
		Router: chi.NewRouter(),
		Logger: log,
	}
	setupRoutes(deps)
	return deps, nil
}

func setupRoutes(deps *Dependencies) {
	cfg := deps.Config
	log := deps.Logger
	base := transport.NewBaseHandler(log)

	guard := auth.NewGuard(authPostgres.NewMembershipReader(deps.DB), log)

	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.JWTAccessSecret,
		cfg.Security.JWTRefreshSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(deps.Gorm), tokens, cfg.Security.BCryptCost, log)

	userService := user.NewService(userPostgres.NewRepository(deps.DB), log)

	categoryRepo := categoryPostgres.NewCategoryRepository(deps.Gorm)
	policyService := policy.NewService(policyPostgres.NewPolicyRepository(deps.Gorm), categoryRepo, guard, log)

	expenseService := expense.NewService(
		expensePostgres.NewExpenseRepository(deps.Gorm),
		categoryRepo,
		policyService.Resolver(),
		guard,
		deps.Bus,
		log,
	)
	reviewService := review.NewService(reviewPostgres.NewReviewRepository(deps.Gorm), guard, deps.Bus, log)
	orgService := organization.NewService(orgPostgres.NewOrganizationRepository(deps.Gorm), userService, guard, log)

	handlers := rest.Handlers{
		Health:       rest.NewHealthHandler(healthChecks(deps)),
		Auth:         auth.NewHandler(authService, log),
		User:         user.NewHandler(base, userService),
		Organization: organization.NewHandler(base, orgService),
		Category:     category.NewHandler(base, category.NewService(categoryRepo, guard, log)),
		Policy:       policy.NewHandler(base, policyService),
		Expense:      expense.NewHandler(base, expenseService),
		Review:       review.NewHandler(base, reviewService),
	}

	if cfg.Server.OpenAPIPath != "" {
		docs, err := swagger.Load(context.Background(), cfg.Server.OpenAPIPath)
		if err != nil {
			log.Warn("openapi document not served", "path", cfg.Server.OpenAPIPath, "error", err)
		} else {
			handlers.Docs = docs
		}
	}

	rest.RegisterAllRoutes(deps.Router, handlers, rest.Options{AllowedOrigins: cfg.Server.Origins()}, log)
}

// initDB opens the pgx-backed pool.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	db, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

// openGorm layers gorm over an existing pool. TranslateError maps unique
// violations to gorm.ErrDuplicatedKey.
func openGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
}

func healthChecks(deps *Dependencies) map[string]rest.Check {
	checks := map[string]rest.Check{"database": rest.DatabaseCheck(deps.DB)}
	if dir := deps.Config.Database.MigrationsDir; dir != "" {
		latest, err := latestMigration(dir)
		if err != nil {
			deps.Logger.Warn("pending migrations are not reported", "dir", dir, "error", err)
		}
		checks["migrations"] = rest.MigrationsCheck(deps.DB, migrationsTable, latest)
	}
	return checks
}
