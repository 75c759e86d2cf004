package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/twofactor/internal/twofactor/domain"
	"github.com/aussiebroadwan/twofactor/internal/twofactor/service"
	"github.com/aussiebroadwan/twofactor/internal/twofactor/totp"
	"github.com/aussiebroadwan/twofactor/pkg/authsdk"
	"github.com/aussiebroadwan/twofactor/pkg/httpx"
	"github.com/aussiebroadwan/twofactor/pkg/slogx"
)

// TwoFactorHandler serves the /v1/2fa endpoints for the authenticated user.
type TwoFactorHandler struct {
	Service *service.TwoFactorService

	// QRSize is the QR code edge in pixels; totp.DefaultQRSize if zero.
	QRSize int
}

// HandleEnable handles POST /v1/2fa/enable
//
//	@Summary		Start 2FA enrolment
//	@Description	Creates (or reuses) a pending TOTP secret and a fresh batch of backup codes.
//	@Description	The secret and the backup codes are only ever returned here.
//	@Tags			2FA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.EnableResponse	"Provisioning data and backup codes"
//	@Failure		400	{object}	authsdk.ErrorResponse	"2FA already enabled"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		429	{object}	authsdk.ErrorResponse	"Rate limit exceeded"
//	@Failure		500	{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/v1/2fa/enable [post].
func (h *TwoFactorHandler) HandleEnable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	user, ok := currentUser(r)
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	prov, err := h.Service.Enroll(ctx, user)
	if err != nil {
		writeServiceError(w, log, "enroll", err)
		return
	}

	qr, err := totp.QRCodeDataURL(prov.ProvisioningURI, h.QRSize)
	if err != nil {
		log.Error("failed to render qr code", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.EnableResponse{
		Message:         "Scan the QR code and verify with a code from your authenticator app",
		QRCode:          qr,
		ProvisioningURI: prov.ProvisioningURI,
		SecretKey:       prov.Secret,
		BackupCodes:     prov.BackupCodes,
	})
}

// HandleVerify handles POST /v1/2fa/verify
//
//	@Summary		Verify a 2FA code
//	@Description	Accepts a TOTP code or a backup code. The first success after enrolment enables 2FA.
//	@Tags			2FA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.VerifyRequest	true	"TOTP or backup code"
//	@Success		200		{object}	authsdk.VerifyResponse	"Code accepted"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Invalid code or request"
//	@Failure		401		{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		404		{object}	authsdk.ErrorResponse	"Not enrolled"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Rate limit exceeded"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/v1/2fa/verify [post].
func (h *TwoFactorHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	user, ok := currentUser(r)
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req authsdk.VerifyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		log.Warn("failed to parse request", "err", err)
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.Token == "" {
		authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "token is required").WriteError(w)
		return
	}

	res, err := h.Service.Verify(ctx, user, req.Token)
	if err != nil {
		writeServiceError(w, log, "verify", err)
		return
	}

	msg := "2FA verified successfully"
	if res.NewlyEnabled {
		msg = "2FA enabled successfully"
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.VerifyResponse{
		Message:      msg,
		NewlyEnabled: res.NewlyEnabled,
	})
}

// HandleDisable handles POST /v1/2fa/disable
//
//	@Summary		Disable 2FA
//	@Description	Removes the TOTP secret and every backup code. Also abandons a pending enrolment.
//	@Tags			2FA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.MessageResponse	"2FA disabled"
//	@Failure		400	{object}	authsdk.ErrorResponse	"2FA not enabled"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		429	{object}	authsdk.ErrorResponse	"Rate limit exceeded"
//	@Failure		500	{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/v1/2fa/disable [post].
func (h *TwoFactorHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	if err := h.Service.Disable(ctx, user); err != nil {
		writeServiceError(w, slogx.FromContext(ctx), "disable", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "2FA disabled successfully"})
}

// HandleRegenerateBackupCodes handles POST /v1/2fa/backup-codes
//
//	@Summary		Regenerate backup codes
//	@Description	Replaces every backup code with a fresh batch. Old codes stop working immediately.
//	@Tags			2FA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.BackupCodesResponse	"New backup codes (shown once)"
//	@Failure		400	{object}	authsdk.ErrorResponse		"2FA not enabled"
//	@Failure		401	{object}	authsdk.ErrorResponse		"Invalid or missing access token"
//	@Failure		429	{object}	authsdk.ErrorResponse		"Rate limit exceeded"
//	@Failure		500	{object}	authsdk.ErrorResponse		"Internal server error"
//	@Router			/v1/2fa/backup-codes [post].
func (h *TwoFactorHandler) HandleRegenerateBackupCodes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	codes, err := h.Service.RegenerateBackupCodes(ctx, user)
	if err != nil {
		writeServiceError(w, slogx.FromContext(ctx), "regenerate backup codes", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.BackupCodesResponse{
		Message:     "New backup codes generated",
		BackupCodes: codes,
	})
}

// HandleStatus handles GET /v1/2fa/status
//
//	@Summary		2FA status
//	@Description	Reports whether 2FA is disabled, pending or enabled, and how many backup codes are left.
//	@Tags			2FA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.StatusResponse	"Current state"
//	@Failure		401	{object}	authsdk.ErrorResponse	"Invalid or missing access token"
//	@Failure		429	{object}	authsdk.ErrorResponse	"Rate limit exceeded"
//	@Failure		500	{object}	authsdk.ErrorResponse	"Internal server error"
//	@Router			/v1/2fa/status [get].
func (h *TwoFactorHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := currentUser(r)
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	st, err := h.Service.Status(ctx, user)
	if err != nil {
		writeServiceError(w, slogx.FromContext(ctx), "status", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.StatusResponse{
		State:                string(st.State),
		BackupCodesRemaining: st.BackupCodesRemaining,
	})
}

// currentUser builds the caller from the identity AuthnMiddleware stored.
func currentUser(r *http.Request) (domain.User, bool) {
	id := httpx.UserIDFromContext(r.Context())
	if id == "" {
		return domain.User{}, false
	}
	return domain.User{ID: id, Email: httpx.EmailFromContext(r.Context())}, true
}

func writeServiceError(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, service.ErrAlreadyEnabled):
		authsdk.ErrAlreadyEnabled.WriteError(w)
	case errors.Is(err, service.ErrNotEnabled):
		authsdk.ErrNotEnabled.WriteError(w)
	case errors.Is(err, service.ErrInvalidCode):
		authsdk.ErrInvalidCode.WriteError(w)
	case errors.Is(err, service.ErrNotFound):
		authsdk.ErrNotEnrolled.WriteError(w)
	default:
		log.Error("2fa operation failed", "op", op, "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}
