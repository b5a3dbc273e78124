// Package config handles loading application configuration from environment
// variables. All config is centralized here so no other package reads env
// vars directly. Sensible defaults are provided for development.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// RecreatePolicy decides what happens when someone creates an entry for a
// (profile, date) pair whose only existing entry is soft-deleted. The
// schema-level unique constraint is unconditional, so the application has
// to pick a behavior.
type RecreatePolicy string

const (
	// RecreateRestore revives the soft-deleted row in place with the new
	// content. This is the default: the user's intent is "write today's
	// entry again".
	RecreateRestore RecreatePolicy = "restore"

	// RecreateReject refuses the create with a validation error, treating
	// the deleted entry as still occupying the date.
	RecreateReject RecreatePolicy = "reject"
)

// Config holds all application configuration. Populated from environment
// variables at startup. Passed to other packages via dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8080).
	Port int

	// BaseURL is the public-facing URL of the UI, used for CORS.
	BaseURL string

	// Database holds MariaDB connection settings.
	Database DatabaseConfig

	// Redis holds Redis connection settings.
	Redis RedisConfig

	// Diary holds diary listing and lifecycle settings.
	Diary DiaryConfig

	// Wizard holds stepped-form session settings.
	Wizard WizardConfig

	// DefaultProfileID is the placeholder identity used when a request does
	// not carry an X-Profile-ID header. Stands in for a real auth layer.
	DefaultProfileID string
}

// DatabaseConfig holds MariaDB connection parameters. Individual fields are
// read from separate env vars so container orchestrators can manage each
// independently. If DATABASE_URL is set, it takes precedence.
type DatabaseConfig struct {
	// Host is the MariaDB address in host:port format (default: "localhost:3306").
	// If no port is specified, 3306 is appended automatically.
	Host string

	// User is the MariaDB username (default: "maumlog").
	User string

	// Password is the MariaDB password (default: "maumlog").
	Password string

	// Name is the database name (default: "maumlog").
	Name string

	// dsnOverride is set when DATABASE_URL is provided, bypassing individual fields.
	dsnOverride string

	// MaxOpenConns is the maximum number of open connections in the pool.
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections in the pool.
	MaxIdleConns int

	// ConnMaxLifetime is how long a connection can be reused.
	ConnMaxLifetime time.Duration

	// MigrationsPath is the directory holding golang-migrate SQL files.
	MigrationsPath string
}

// DSN returns the go-sql-driver/mysql connection string. If DATABASE_URL was
// set, it is returned as-is. Otherwise the DSN is built from the individual
// fields using the driver's Config.FormatDSN() to safely handle special
// characters in passwords.
func (d DatabaseConfig) DSN() string {
	if d.dsnOverride != "" {
		return d.dsnOverride
	}
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = ensurePort(d.Host, "3306")
	cfg.DBName = d.Name
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// ensurePort appends the default port if the host string doesn't include one.
func ensurePort(host, defaultPort string) string {
	_, _, err := net.SplitHostPort(host)
	if err != nil {
		return net.JoinHostPort(host, defaultPort)
	}
	return host
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379").
	URL string
}

// DiaryConfig holds diary listing and lifecycle settings.
type DiaryConfig struct {
	// PageSize is the default number of entries per list page.
	PageSize int

	// Recreate controls create-after-soft-delete behavior for a date that
	// already has a deleted entry.
	Recreate RecreatePolicy

	// CalendarCacheTTL is how long cached per-year calendar date sets live
	// in Redis. Writes invalidate eagerly; the TTL is a backstop.
	CalendarCacheTTL time.Duration
}

// WizardConfig holds stepped-form session settings.
type WizardConfig struct {
	// SessionTTL is how long an in-progress wizard survives in Redis
	// without activity before it is discarded.
	SessionTTL time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Env:     getEnv("ENV", "development"),
		Port:    getEnvInt("PORT", 8080),
		BaseURL: getEnv("BASE_URL", "http://localhost:8080"),

		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost:3306"),
			User:            getEnv("DB_USER", "maumlog"),
			Password:        getEnv("DB_PASSWORD", "maumlog"),
			Name:            getEnv("DB_NAME", "maumlog"),
			dsnOverride:     getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			MigrationsPath:  getEnv("MIGRATIONS_PATH", "db/migrations"),
		},

		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},

		Diary: DiaryConfig{
			PageSize:         getEnvInt("DIARY_PAGE_SIZE", 20),
			Recreate:         RecreatePolicy(getEnv("RECREATE_POLICY", string(RecreateRestore))),
			CalendarCacheTTL: getEnvDuration("CALENDAR_CACHE_TTL", 12*time.Hour),
		},

		Wizard: WizardConfig{
			SessionTTL: getEnvDuration("WIZARD_SESSION_TTL", 72*time.Hour),
		},

		// Placeholder identity until a real auth layer exists. Matches the
		// profile seeded in development databases.
		DefaultProfileID: getEnv("DEFAULT_PROFILE_ID", "b0e0e902-3488-4c10-9621-fffde048923c"),
	}

	switch cfg.Diary.Recreate {
	case RecreateRestore, RecreateReject:
	default:
		return nil, fmt.Errorf("RECREATE_POLICY must be %q or %q, got %q",
			RecreateRestore, RecreateReject, cfg.Diary.Recreate)
	}

	if cfg.Diary.PageSize < 1 {
		return nil, fmt.Errorf("DIARY_PAGE_SIZE must be at least 1")
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// --- Helper functions for reading environment variables ---

// getEnv reads a string env var or returns the default.
func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

// getEnvInt reads an integer env var or returns the default.
func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvDuration reads a duration env var (e.g., "12h") or returns the default.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
