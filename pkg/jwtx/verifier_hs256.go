package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// HS256Verifier validates tokens signed with a shared HMAC secret. Suits
// deployments where the identity provider and this service share a secret.
type HS256Verifier struct {
	secret []byte
	opts   VerifyOptions
}

// NewVerifierHS256 creates a verifier for the given shared secret.
func NewVerifierHS256(secret []byte, opts VerifyOptions) (*HS256Verifier, error) {
	if len(secret) < 32 {
		return nil, errors.New("jwtx: HS256 secret must be at least 32 bytes")
	}
	return &HS256Verifier{secret: secret, opts: opts}, nil
}

func (v *HS256Verifier) Verify(tokenStr string) (Claims, error) {
	return verify(tokenStr, jwt.SigningMethodHS256.Alg(), v.secret, v.opts)
}
