package jwtx

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// EdDSAVerifier validates JWTs signed using EdDSA (Ed25519) with the
// identity provider's public key.
type EdDSAVerifier struct {
	pub  ed25519.PublicKey
	opts VerifyOptions
}

// NewVerifierEdDSA creates a verifier for a single Ed25519 public key.
func NewVerifierEdDSA(pub ed25519.PublicKey, opts VerifyOptions) (*EdDSAVerifier, error) {
	if len(pub) != ed25519.PublicKeySize {
		return nil, errors.New("jwtx: invalid Ed25519 public key size")
	}
	return &EdDSAVerifier{pub: pub, opts: opts}, nil
}

// ParseEd25519PublicKeyPEM loads a PKIX "PUBLIC KEY" PEM block.
func ParseEd25519PublicKeyPEM(pemKey []byte) (ed25519.PublicKey, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, errors.New("jwtx: invalid PEM for Ed25519 key")
	}
	if block.Type != "PUBLIC KEY" {
		return nil, fmt.Errorf("jwtx: expected PUBLIC KEY, got %q", block.Type)
	}

	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKIX: %w", err)
	}

	key, ok := pub.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("jwtx: not Ed25519 public key")
	}
	return key, nil
}

func (v *EdDSAVerifier) Verify(tokenStr string) (Claims, error) {
	return verify(tokenStr, jwt.SigningMethodEdDSA.Alg(), v.pub, v.opts)
}
