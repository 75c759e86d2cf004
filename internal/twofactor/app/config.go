package app

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/twofactor/internal/twofactor/service"
	"github.com/aussiebroadwan/twofactor/pkg/httpx"
)

type Config struct {
	Issuer          string        // Issuer shown in authenticator apps (default: twofactor)
	DatabaseFile    string        // Path to SQLite database file (default: ./twofactor.db)
	PepperFile      string        // Path to backup code pepper, created if missing (default: ./pepper)
	MasterKeyPath   string        // Optional: key for sealing TOTP secrets; random per process if unset
	BackupCodeCount int           // Backup codes per batch (default: 10, range 1..100)
	PendingTTL      time.Duration // Unconfirmed enrolments older than this are removed (default: 24h)
	UsedCodeTTL     time.Duration // Redeemed backup codes are kept this long (default: 30 days)

	JWTSecret        string   // HS256 secret shared with the identity provider
	JWTPublicKeyPath string   // Ed25519 public key (PEM); used instead of JWTSecret when set
	JWTIssuer        string   // Optional: required iss claim
	JWTAudience      []string // Optional: accepted aud values, comma separated

	SMTP SMTPConfig

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)

	VerifyLimit  httpx.RateLimitConfig // RATELIMIT_STRICT_*
	AccountLimit httpx.RateLimitConfig // RATELIMIT_MODERATE_*
	HealthLimit  httpx.RateLimitConfig // RATELIMIT_PUBLIC_*
}

// SMTPConfig enables email notifications when Host is set.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	TLS      bool
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:          getEnvOrDefault("TWOFACTOR_ISSUER", "twofactor"),
		DatabaseFile:    getEnvOrDefault("TWOFACTOR_DATABASE_FILE", "twofactor.db"),
		PepperFile:      getEnvOrDefault("TWOFACTOR_PEPPER_FILE", "pepper"),
		MasterKeyPath:   os.Getenv("TWOFACTOR_MASTER_KEY_PATH"),
		BackupCodeCount: getEnvIntOrDefault("TWOFACTOR_BACKUP_CODE_COUNT", service.DefaultBackupCodeCount),
		PendingTTL:      getEnvDurationOrDefault("TWOFACTOR_PENDING_TTL", 24*time.Hour),
		UsedCodeTTL:     getEnvDurationOrDefault("TWOFACTOR_USED_CODE_RETENTION", 30*24*time.Hour),

		JWTSecret:        os.Getenv("TWOFACTOR_JWT_SECRET"),
		JWTPublicKeyPath: os.Getenv("TWOFACTOR_JWT_PUBLIC_KEY_PATH"),
		JWTIssuer:        os.Getenv("TWOFACTOR_JWT_ISSUER"),
		JWTAudience:      splitList(os.Getenv("TWOFACTOR_JWT_AUDIENCE")),

		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvIntOrDefault("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnvOrDefault("SMTP_FROM", "no-reply@localhost"),
			TLS:      getEnvBoolOrDefault("SMTP_TLS", true),
		},

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),

		VerifyLimit:  httpx.ParseRateLimitFromEnv("STRICT", httpx.StrictLimit),
		AccountLimit: httpx.ParseRateLimitFromEnv("MODERATE", httpx.ModerateLimit),
		HealthLimit:  httpx.ParseRateLimitFromEnv("PUBLIC", httpx.PublicLimit),
	}

	return cfg
}

// Validate reports configuration that would stop the service from doing
// its job.
func (c Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" && c.JWTPublicKeyPath == "" {
		errs = append(errs, errors.New("one of TWOFACTOR_JWT_SECRET or TWOFACTOR_JWT_PUBLIC_KEY_PATH is required"))
	}
	if c.BackupCodeCount < 1 || c.BackupCodeCount > service.MaxBackupCodeCount {
		errs = append(errs, errors.New("TWOFACTOR_BACKUP_CODE_COUNT must be between 1 and 100"))
	}
	if c.PendingTTL <= 0 {
		errs = append(errs, errors.New("TWOFACTOR_PENDING_TTL must be positive"))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
