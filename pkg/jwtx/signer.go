package jwtx

import (
	"crypto/ed25519"

	"github.com/golang-jwt/jwt/v5"
)

// Token issuance belongs to the identity provider. These helpers exist for
// tests and local tooling that need tokens the verifiers accept.

// SignHS256 signs claims with a shared secret.
func SignHS256(claims Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// SignEdDSA signs claims with an Ed25519 private key.
func SignEdDSA(claims Claims, key ed25519.PrivateKey) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(key)
}
