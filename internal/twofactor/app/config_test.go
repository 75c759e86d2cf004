package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/twofactor/pkg/httpx"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"TWOFACTOR_ISSUER", "TWOFACTOR_BACKUP_CODE_COUNT", "TWOFACTOR_PENDING_TTL", "PORT", "SMTP_TLS", "RATELIMIT_STRICT_REQUESTS"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	require.Equal(t, "twofactor", cfg.Issuer)
	require.Equal(t, "twofactor.db", cfg.DatabaseFile)
	require.Equal(t, 10, cfg.BackupCodeCount)
	require.Equal(t, 24*time.Hour, cfg.PendingTTL)
	require.Equal(t, 8080, cfg.Port)
	require.True(t, cfg.SMTP.TLS)
	require.Equal(t, httpx.StrictLimit, cfg.VerifyLimit)
	require.Equal(t, httpx.ModerateLimit, cfg.AccountLimit)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("TWOFACTOR_ISSUER", "Acme")
	t.Setenv("TWOFACTOR_BACKUP_CODE_COUNT", "12")
	t.Setenv("TWOFACTOR_PENDING_TTL", "90")
	t.Setenv("TWOFACTOR_JWT_AUDIENCE", "web, mobile ,")
	t.Setenv("SMTP_TLS", "false")
	t.Setenv("PORT", "not-a-number")
	t.Setenv("RATELIMIT_STRICT_REQUESTS", "50")

	cfg := LoadConfig()
	require.Equal(t, "Acme", cfg.Issuer)
	require.Equal(t, 12, cfg.BackupCodeCount)
	require.Equal(t, 90*time.Minute, cfg.PendingTTL, "bare integers are minutes")
	require.Equal(t, []string{"web", "mobile"}, cfg.JWTAudience)
	require.False(t, cfg.SMTP.TLS)
	require.Equal(t, 8080, cfg.Port, "unparsable values fall back")
	require.Equal(t, 50, cfg.VerifyLimit.RequestsPerWindow)
}

func TestValidate(t *testing.T) {
	good := Config{JWTSecret: "s", BackupCodeCount: 10, PendingTTL: time.Hour}
	require.NoError(t, good.Validate())

	bad := Config{BackupCodeCount: 101}
	err := bad.Validate()
	require.Error(t, err)
	require.ErrorContains(t, err, "TWOFACTOR_JWT_SECRET")
	require.ErrorContains(t, err, "TWOFACTOR_BACKUP_CODE_COUNT")
	require.ErrorContains(t, err, "TWOFACTOR_PENDING_TTL")
}
