package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Env  string `env:"APP_ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"8080"`

	// Database
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"civic_reports"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// Auth
	JWTSecret      string        `env:"JWT_SECRET"`
	JWTExpiry      time.Duration `env:"JWT_EXPIRY" envDefault:"168h"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"12"`
	GoogleClientID string        `env:"GOOGLE_CLIENT_ID"`
	AdminEmails    []string      `env:"ADMIN_EMAILS" envSeparator:","`

	// Object storage
	GCSBucket        string `env:"GCS_BUCKET"`
	GCSPublicBaseURL string `env:"GCS_PUBLIC_BASE_URL" envDefault:"https://storage.googleapis.com"`
	MaxUploadBytes   int    `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`

	// Rate limit storage; empty address keeps counters in memory.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	RateLimitWindow  time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
	RateLimitGeneral int           `env:"RATE_LIMIT_GENERAL" envDefault:"100"`
	RateLimitAuth    int           `env:"RATE_LIMIT_AUTH" envDefault:"10"`
	RateLimitReports int           `env:"RATE_LIMIT_REPORTS" envDefault:"10"`
	RateLimitVotes   int           `env:"RATE_LIMIT_VOTES" envDefault:"60"`

	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"`
	SentryDSN   string `env:"SENTRY_DSN"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS.
func (c *Config) IsAdminEmail(email string) bool {
	for _, e := range c.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}
