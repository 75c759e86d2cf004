package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aussiebroadwan/twofactor/pkg/cryptox"
	"github.com/aussiebroadwan/twofactor/pkg/jwtx"
)

// sealInfo separates the TOTP sealing key from anything else derived from
// the same master key.
const sealInfo = "twofactor/totp-secret-seal/v1"

// InitVerifier builds the access token verifier for the identity provider.
// An Ed25519 public key takes precedence over the shared HS256 secret.
func InitVerifier(cfg Config, logger *slog.Logger) (jwtx.Verifier, error) {
	opts := jwtx.VerifyOptions{
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		Leeway:   jwtx.DefaultLeeway,
	}

	if cfg.JWTPublicKeyPath != "" {
		data, err := os.ReadFile(cfg.JWTPublicKeyPath)
		if err != nil {
			return nil, fmt.Errorf("read jwt public key: %w", err)
		}
		pub, err := jwtx.ParseEd25519PublicKeyPEM(data)
		if err != nil {
			return nil, err
		}
		logger.Info("verifying access tokens with EdDSA", "issuer", cfg.JWTIssuer)
		return jwtx.NewVerifierEdDSA(pub, opts)
	}

	logger.Info("verifying access tokens with HS256", "issuer", cfg.JWTIssuer)
	return jwtx.NewVerifierHS256([]byte(cfg.JWTSecret), opts)
}

// InitSealer loads the master key and derives the TOTP secret sealer.
// Without a configured key every restart orphans existing enrolments, so
// that mode is only acceptable outside production.
func InitSealer(cfg Config, logger *slog.Logger) (*cryptox.Sealer, error) {
	master, ephemeral, err := cryptox.LoadMasterKey(cfg.MasterKeyPath)
	if err != nil {
		return nil, err
	}
	if ephemeral {
		if cfg.Env == "prod" {
			return nil, fmt.Errorf("TWOFACTOR_MASTER_KEY_PATH is required when ENV=prod")
		}
		logger.Warn("no master key configured, using an ephemeral key; enrolments will not survive a restart")
	} else {
		logger.Info("master key loaded", "path", cfg.MasterKeyPath)
	}

	return cryptox.NewSealer(master, sealInfo)
}
