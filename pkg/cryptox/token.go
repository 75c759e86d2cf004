package cryptox

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// CodeAlphabet is Crockford's base32 alphabet: upper-case letters and digits
// without I, L, O and U.
const CodeAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// GenerateCode returns a random code of length characters drawn from
// CodeAlphabet. Each character carries 5 bits of entropy, so a 10 character
// code carries 50 bits.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("code length must be positive, got %d", length)
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random code: %w", err)
	}

	// 256 is a multiple of 32, so masking the low 5 bits is unbiased.
	out := make([]byte, length)
	for i, b := range buf {
		out[i] = CodeAlphabet[b&0x1f]
	}
	return string(out), nil
}

// FingerprintCode returns an HMAC-SHA256 fingerprint of code keyed with
// pepper, base64url-encoded (43 chars).
func FingerprintCode(pepper []byte, code string) string {
	mac := hmac.New(sha256.New, pepper)
	mac.Write([]byte(code))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
