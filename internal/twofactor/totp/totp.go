// Package totp generates and checks RFC 6238 codes. Every function is a pure
// function of its arguments; nothing here touches storage.
package totp

import (
	"crypto/subtle"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// Period is the length of one time step.
	Period = 30 * time.Second

	// Skew is how many steps either side of now are accepted. Fixed so that
	// callers can not widen the brute-force window.
	Skew = 1

	// SecretSize is the raw secret length in bytes (160 bits, per RFC 4226).
	SecretSize = 20

	digits = otp.DigitsSix
)

var ErrInvalidSecret = errors.New("totp: invalid secret")

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

func validateOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    uint(Period / time.Second),
		Skew:      0,
		Digits:    digits,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// NewSecret returns a fresh base32 secret (no padding).
func NewSecret() (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "twofactor",
		AccountName: "pending",
		Period:      uint(Period / time.Second),
		SecretSize:  SecretSize,
		Digits:      digits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("totp: generate secret: %w", err)
	}
	return key.Secret(), nil
}

// ProvisioningURI renders the otpauth:// URI an authenticator app imports.
func ProvisioningURI(secret, account, issuer string) (string, error) {
	raw, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      uint(Period / time.Second),
		Secret:      raw,
		Digits:      digits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("totp: provisioning uri: %w", err)
	}
	return key.URL(), nil
}

// CurrentCode returns the code for the step containing t.
func CurrentCode(secret string, t time.Time) (string, error) {
	if _, err := decodeSecret(secret); err != nil {
		return "", err
	}
	return totp.GenerateCodeCustom(secret, t, validateOpts())
}

// Verify reports whether code is valid at t, allowing Skew steps either side.
func Verify(secret, code string, t time.Time) bool {
	_, ok := Match(secret, code, t)
	return ok
}

// Match is Verify that also returns the time step the code belongs to, for
// replay protection. Malformed codes or secrets never match.
func Match(secret, code string, t time.Time) (int64, bool) {
	if !wellFormed(code) {
		return 0, false
	}
	if _, err := decodeSecret(secret); err != nil {
		return 0, false
	}

	var (
		matched int64
		found   bool
	)
	for offset := -Skew; offset <= Skew; offset++ {
		at := t.Add(time.Duration(offset) * Period)
		want, err := totp.GenerateCodeCustom(secret, at, validateOpts())
		if err != nil {
			return 0, false
		}
		if subtle.ConstantTimeCompare([]byte(want), []byte(code)) == 1 && !found {
			matched, found = Step(at), true
		}
	}
	return matched, found
}

// Step returns the time step number containing t.
func Step(t time.Time) int64 {
	return t.Unix() / int64(Period/time.Second)
}

func wellFormed(code string) bool {
	if len(code) != digits.Length() {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

func decodeSecret(secret string) ([]byte, error) {
	s := strings.ToUpper(strings.TrimSpace(secret))
	s = strings.TrimRight(s, "=")
	raw, err := b32.DecodeString(s)
	if err != nil || len(raw) == 0 {
		return nil, ErrInvalidSecret
	}
	return raw, nil
}
