package app

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/twofactor/internal/twofactor/totp"
	"github.com/aussiebroadwan/twofactor/pkg/authsdk"
	"github.com/aussiebroadwan/twofactor/pkg/jwtx"
	"github.com/aussiebroadwan/twofactor/pkg/slogx"
)

func testConfig(t *testing.T) Config {
	dir := t.TempDir()

	masterKey := filepath.Join(dir, "master.key")
	require.NoError(t, os.WriteFile(masterKey, []byte("0123456789abcdef0123456789abcdef"), 0o600))

	return Config{
		Issuer:               "Test",
		DatabaseFile:         filepath.Join(dir, "twofactor.db"),
		PepperFile:           filepath.Join(dir, "pepper"),
		MasterKeyPath:        masterKey,
		BackupCodeCount:      10,
		PendingTTL:           time.Hour,
		UsedCodeTTL:          time.Hour,
		JWTSecret:            "0123456789abcdef0123456789abcdef",
		JWTIssuer:            "https://id.example.com",
		Env:                  "test",
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	}
}

func TestApplicationServesTwoFactor(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	app, err := NewWithLogger(cfg, slogx.Discard())
	require.NoError(t, err)

	srv := httptest.NewServer(app.Handler())
	defer srv.Close()

	claims := jwtx.NewAccessClaims("user-1", "alice@example.com", cfg.JWTIssuer, nil, time.Hour, time.Now())
	tok, err := jwtx.SignHS256(claims, []byte(cfg.JWTSecret))
	require.NoError(t, err)

	s := authsdk.NewSDKClient(srv.URL).NewSession(tok)
	enabled, err := s.Enable(ctx)
	require.NoError(t, err)

	code, err := totp.CurrentCode(enabled.SecretKey, time.Now())
	require.NoError(t, err)
	res, err := s.Verify(ctx, code)
	require.NoError(t, err)
	require.True(t, res.NewlyEnabled)

	require.NoError(t, app.Shutdown())

	// Everything survives a restart with the same key material.
	app, err = NewWithLogger(cfg, slogx.Discard())
	require.NoError(t, err)
	defer func() { _ = app.Shutdown() }()

	srv2 := httptest.NewServer(app.Handler())
	defer srv2.Close()

	st, err := authsdk.NewSDKClient(srv2.URL).NewSession(tok).Status(ctx)
	require.NoError(t, err)
	require.Equal(t, authsdk.StateEnabled, st.State)

	res, err = authsdk.NewSDKClient(srv2.URL).NewSession(tok).Verify(ctx, enabled.BackupCodes[0])
	require.NoError(t, err)
	require.False(t, res.NewlyEnabled)
}

func TestApplicationRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.JWTSecret = ""

	_, err := NewWithLogger(cfg, slogx.Discard())
	require.Error(t, err)
}

func TestProdRequiresMasterKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.MasterKeyPath = ""
	cfg.Env = "prod"

	_, err := NewWithLogger(cfg, slogx.Discard())
	require.ErrorContains(t, err, "TWOFACTOR_MASTER_KEY_PATH")
}

func TestInitVerifierEdDSA(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "idp.pub")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), 0o600))

	cfg := Config{JWTPublicKeyPath: path, JWTIssuer: "idp"}
	v, err := InitVerifier(cfg, slogx.Discard())
	require.NoError(t, err)

	tok, err := jwtx.SignEdDSA(jwtx.NewAccessClaims("u", "", "idp", nil, time.Minute, time.Now()), priv)
	require.NoError(t, err)
	claims, err := v.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "u", claims.Subject)
}
