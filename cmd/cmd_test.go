package cmd

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const testConfigYAML = `
http_server:
  port: 9090
  allowed_origins: http://localhost:3000
database:
  source: postgres://localhost/test
  max_open_conns: 10
  max_idle_conns: 2
security:
  jwt_access_secret: aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa
  jwt_refresh_secret: bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb
  access_token_duration: 10m
observability:
  logging:
    level: debug
    format: text
`

var _ = Describe("loadConfig", func() {
	var dir string

	setenv := func(key, value string) {
		prev, had := os.LookupEnv(key)
		Expect(os.Setenv(key, value)).To(Succeed())
		DeferCleanup(func() {
			if had {
				_ = os.Setenv(key, prev)
			} else {
				_ = os.Unsetenv(key)
			}
		})
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("reads config.yml and fills defaults", func() {
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(testConfigYAML), 0o600)).To(Succeed())

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Port).To(Equal(9090))
		Expect(cfg.Security.AccessTokenDuration).To(Equal(10 * time.Minute))
		Expect(cfg.Security.RefreshTokenDuration).To(Equal(168 * time.Hour))
		Expect(cfg.Security.BCryptCost).To(Equal(12))
		Expect(cfg.Database.ConnMaxLifetime).To(Equal(30 * time.Minute))
		Expect(cfg.Server.Origins()).To(ConsistOf("http://localhost:3000"))
	})

	It("lets APP_ variables override the file", func() {
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(testConfigYAML), 0o600)).To(Succeed())
		setenv("APP_HTTP_SERVER_PORT", "7070")

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Port).To(Equal(7070))
	})

	It("reads everything from the environment in production", func() {
		setenv("APP_ENV", "production")
		setenv("APP_DATABASE_SOURCE", "postgres://db/prod")
		setenv("APP_SECURITY_JWT_ACCESS_SECRET", "cccccccccccccccccccccccccccccccccccc")
		setenv("APP_SECURITY_JWT_REFRESH_SECRET", "dddddddddddddddddddddddddddddddddddd")

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Env).To(Equal("production"))
		Expect(cfg.Database.Source).To(Equal("postgres://db/prod"))
		Expect(cfg.Server.Port).To(Equal(8080))
	})

	It("applies a .env file", func() {
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(testConfigYAML), 0o600)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(dir, ".env"), []byte("APP_DATABASE_SOURCE=postgres://from-dotenv/db\n"), 0o600)).To(Succeed())
		DeferCleanup(os.Unsetenv, "APP_DATABASE_SOURCE")

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Database.Source).To(Equal("postgres://from-dotenv/db"))
	})

	It("fails validation without secrets", func() {
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte("database:\n  source: x\n"), 0o600)).To(Succeed())

		_, err := loadConfig(dir)
		Expect(err).To(MatchError(ContainSubstring("error validating config")))
	})

	It("picks the goose command from flags", func() {
		DeferCleanup(func() { migrateRollback, migrateStatus = false, false })

		Expect(migrationCommand()).To(Equal("up"))
		migrateRollback = true
		Expect(migrationCommand()).To(Equal("down"))
		migrateStatus = true
		Expect(migrationCommand()).To(Equal("status"))
	})
})
