package authsdk

import (
	"context"
	"net/http"
)

// Enable starts (or restarts) enrolment and returns the provisioning data
// and a fresh batch of backup codes.
func (s *Session) Enable(ctx context.Context) (*EnableResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/2fa/enable", nil)
	if err != nil {
		return nil, err
	}

	var out EnableResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify submits a TOTP code or a backup code. A rejected code yields
// ErrInvalidCode whichever factor it was meant for.
func (s *Session) Verify(ctx context.Context, token string) (*VerifyResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/2fa/verify", VerifyRequest{Token: token})
	if err != nil {
		return nil, err
	}

	var out VerifyResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Disable turns 2FA off and discards the credential and backup codes.
func (s *Session) Disable(ctx context.Context) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/2fa/disable", nil)
	if err != nil {
		return err
	}

	var out MessageResponse
	return decodeJSON(resp, &out, http.StatusOK)
}

// RegenerateBackupCodes replaces every backup code with a new batch.
func (s *Session) RegenerateBackupCodes(ctx context.Context) ([]string, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/2fa/backup-codes", nil)
	if err != nil {
		return nil, err
	}

	var out BackupCodesResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.BackupCodes, nil
}

// Status reports the caller's 2FA state and remaining backup codes.
func (s *Session) Status(ctx context.Context) (*StatusResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/2fa/status", nil)
	if err != nil {
		return nil, err
	}

	var out StatusResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
