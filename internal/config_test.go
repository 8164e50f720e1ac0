package internal_test

import (
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/expense-reimbursement/internal"
)

func validConfig() *internal.Config {
	cfg := &internal.Config{
		Server: internal.ServerConfig{
			Port:           8080,
			AllowedOrigins: "http://localhost:3000, https://app.example.com",
		},
		Database: internal.DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 5 * time.Minute,
			Source:          "postgres://localhost/expenses",
		},
		Security: internal.SecurityConfig{
			JWTAccessSecret:      strings.Repeat("a", 32),
			JWTRefreshSecret:     strings.Repeat("b", 32),
			AccessTokenDuration:  15 * time.Minute,
			RefreshTokenDuration: 24 * time.Hour,
			BCryptCost:           10,
		},
		Observability: internal.ObservabilityConfig{
			Logging: internal.LoggingConfig{Level: "info", Format: "json"},
		},
	}
	cfg.Defaults()
	return cfg
}

var _ = Describe("Config", func() {
	It("accepts a complete configuration", func() {
		Expect(validConfig().Validate()).To(Succeed())
	})

	It("fills defaults", func() {
		cfg := validConfig()
		Expect(cfg.Env).To(Equal("development"))
		Expect(cfg.Server.ShutdownTimeout).To(Equal(10 * time.Second))
		Expect(cfg.Database.MigrationsDir).To(Equal("db/migrations"))
	})

	It("splits allowed origins", func() {
		Expect(validConfig().Server.Origins()).To(Equal([]string{"http://localhost:3000", "https://app.example.com"}))
	})

	DescribeTable("rejects invalid settings",
		func(mutate func(*internal.Config), fragment string) {
			cfg := validConfig()
			mutate(cfg)
			err := cfg.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(fragment))
		},
		Entry("short access secret", func(c *internal.Config) { c.Security.JWTAccessSecret = "short" }, "JWTAccessSecret"),
		Entry("shared secrets", func(c *internal.Config) { c.Security.JWTRefreshSecret = c.Security.JWTAccessSecret }, "JWTRefreshSecret"),
		Entry("idle above open", func(c *internal.Config) { c.Database.MaxIdleConns = 20 }, "max_idle_conns"),
		Entry("bad origin", func(c *internal.Config) { c.Server.AllowedOrigins = "localhost" }, "invalid allowed origin"),
		Entry("unknown log level", func(c *internal.Config) { c.Observability.Logging.Level = "trace" }, "Level"),
		Entry("refresh shorter than access", func(c *internal.Config) { c.Security.RefreshTokenDuration = time.Minute }, "refresh_token_duration"),
		Entry("missing dsn", func(c *internal.Config) { c.Database.Source = "" }, "Source"),
	)
})
