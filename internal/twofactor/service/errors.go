package service

import "errors"

var (
	ErrAlreadyEnabled = errors.New("two-factor authentication already enabled")
	ErrNotEnabled     = errors.New("two-factor authentication not enabled")

	// ErrInvalidCode is returned for any rejected code, whether it was
	// tried as a TOTP code or a backup code.
	ErrInvalidCode = errors.New("invalid code")

	ErrInvalidCount = errors.New("backup code count out of range")
	ErrNotFound     = errors.New("two-factor credential not found")
)
