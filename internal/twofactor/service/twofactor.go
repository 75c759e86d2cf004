package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/twofactor/internal/twofactor/domain"
	"github.com/aussiebroadwan/twofactor/internal/twofactor/store"
	"github.com/aussiebroadwan/twofactor/internal/twofactor/totp"
	"github.com/aussiebroadwan/twofactor/pkg/cryptox"
	"github.com/aussiebroadwan/twofactor/pkg/idx"
	"github.com/aussiebroadwan/twofactor/pkg/slogx"
)

// Notifier is told when a user finishes enrolment. Implementations must not
// block for long; errors are logged and otherwise ignored.
type Notifier interface {
	Notify2FAEnabled(ctx context.Context, user domain.User) error
}

// Provisioning is everything the user needs to set up an authenticator.
// Secret and BackupCodes are never returned again after this reply.
type Provisioning struct {
	Secret          string
	ProvisioningURI string
	AccountLabel    string
	Issuer          string
	BackupCodes     []string
}

// VerifyResult is the outcome of a successful Verify.
type VerifyResult struct {
	Success      bool
	NewlyEnabled bool
}

// Status describes where a user is in the lifecycle.
type Status struct {
	State                domain.State
	BackupCodesRemaining int
}

// TwoFactorService runs the DISABLED -> PENDING -> ENABLED state machine.
// Each operation reads state and writes it in a single store transaction.
type TwoFactorService struct {
	Store       store.Store
	Sealer      *cryptox.Sealer
	BackupCodes *BackupCodeManager
	Notifier    Notifier // optional

	Issuer          string // shown by authenticator apps
	BackupCodeCount int    // per batch, DefaultBackupCodeCount if zero

	Now func() time.Time
}

func NewTwoFactorService(st store.Store, sealer *cryptox.Sealer, codes *BackupCodeManager, notifier Notifier, issuer string) *TwoFactorService {
	return &TwoFactorService{
		Store:           st,
		Sealer:          sealer,
		BackupCodes:     codes,
		Notifier:        notifier,
		Issuer:          issuer,
		BackupCodeCount: DefaultBackupCodeCount,
		Now:             time.Now,
	}
}

// Enroll starts enrolment, or restarts it for a PENDING user. A pending
// secret is reused so an interrupted setup can be retried; the backup code
// batch is replaced on every call.
func (s *TwoFactorService) Enroll(ctx context.Context, user domain.User) (Provisioning, error) {
	var (
		secret string
		codes  []string
	)

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		now := s.now()

		cred, err := tx.Credentials().GetCredentialByUserID(ctx, user.ID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			secret, err = totp.NewSecret()
			if err != nil {
				return err
			}
			sealed, err := s.Sealer.Seal([]byte(secret), sealAAD(user.ID))
			if err != nil {
				return fmt.Errorf("seal secret: %w", err)
			}
			if err := tx.Credentials().CreateCredential(ctx, domain.TwoFactorCredential{
				ID:           idx.NewAt(now).String(),
				UserID:       user.ID,
				SecretSealed: sealed,
				CreatedAt:    now,
				UpdatedAt:    now,
			}); err != nil {
				return fmt.Errorf("create credential: %w", err)
			}

		case err != nil:
			return fmt.Errorf("load credential: %w", err)

		case cred.State() == domain.StateEnabled:
			return ErrAlreadyEnabled

		default:
			secret, err = s.openSecret(cred)
			if err != nil {
				return err
			}
			if err := tx.Credentials().TouchCredential(ctx, user.ID, now); err != nil {
				return fmt.Errorf("touch credential: %w", err)
			}
		}

		codes, err = s.BackupCodes.Generate(ctx, tx, user.ID, s.backupCodeCount())
		return err
	})
	if err != nil {
		return Provisioning{}, err
	}

	label := accountLabel(user)
	uri, err := totp.ProvisioningURI(secret, label, s.Issuer)
	if err != nil {
		return Provisioning{}, err
	}

	slogx.FromContext(ctx).Info("2fa enrolment started", "user_id", user.ID)

	return Provisioning{
		Secret:          secret,
		ProvisioningURI: uri,
		AccountLabel:    label,
		Issuer:          s.Issuer,
		BackupCodes:     codes,
	}, nil
}

// Verify checks code as a TOTP code first and then as a backup code. Either
// factor confirms a PENDING credential. Failures of both factors look the
// same to the caller.
func (s *TwoFactorService) Verify(ctx context.Context, user domain.User, code string) (VerifyResult, error) {
	log := slogx.FromContext(ctx)

	var result VerifyResult
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		now := s.now()

		cred, err := tx.Credentials().GetCredentialByUserID(ctx, user.ID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load credential: %w", err)
		}

		secret, err := s.openSecret(cred)
		if err != nil {
			return err
		}

		pending := cred.State() == domain.StatePending

		if step, ok := totp.Match(secret, strings.TrimSpace(code), now); ok {
			accepted, err := s.acceptStep(ctx, tx, user.ID, pending, step, now)
			if err != nil {
				return err
			}
			if accepted {
				result = VerifyResult{Success: true, NewlyEnabled: pending}
				return nil
			}
			log.Warn("totp code replayed", "user_id", user.ID, "step", step)
		}

		consumed, err := s.BackupCodes.Consume(ctx, tx, user.ID, code)
		if err != nil {
			return err
		}
		if !consumed {
			return ErrInvalidCode
		}

		if pending {
			if _, err := tx.Credentials().ConfirmCredential(ctx, user.ID, 0, now); err != nil {
				return fmt.Errorf("confirm credential: %w", err)
			}
		}
		result = VerifyResult{Success: true, NewlyEnabled: pending}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			log.Info("2fa verification failed", "user_id", user.ID)
		}
		return VerifyResult{}, err
	}

	if result.NewlyEnabled {
		log.Info("2fa enabled", "user_id", user.ID)
		s.notifyEnabled(ctx, user)
	}

	return result, nil
}

// Disable removes the credential and every backup code. Allowed from PENDING
// as well as ENABLED.
func (s *TwoFactorService) Disable(ctx context.Context, user domain.User) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Credentials().GetCredentialByUserID(ctx, user.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotEnabled
			}
			return fmt.Errorf("load credential: %w", err)
		}

		if err := tx.BackupCodes().DeleteAllBackupCodes(ctx, user.ID); err != nil {
			return fmt.Errorf("delete backup codes: %w", err)
		}
		if _, err := tx.Credentials().DeleteCredential(ctx, user.ID); err != nil {
			return fmt.Errorf("delete credential: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("2fa disabled", "user_id", user.ID)
	return nil
}

// RegenerateBackupCodes replaces the backup codes of an ENABLED user.
func (s *TwoFactorService) RegenerateBackupCodes(ctx context.Context, user domain.User) ([]string, error) {
	var codes []string

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		cred, err := tx.Credentials().GetCredentialByUserID(ctx, user.ID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotEnabled
		}
		if err != nil {
			return fmt.Errorf("load credential: %w", err)
		}
		if cred.State() != domain.StateEnabled {
			return ErrNotEnabled
		}

		codes, err = s.BackupCodes.Generate(ctx, tx, user.ID, s.backupCodeCount())
		return err
	})
	if err != nil {
		return nil, err
	}

	slogx.FromContext(ctx).Info("backup codes regenerated", "user_id", user.ID)
	return codes, nil
}

// Status reports the user's state and how many backup codes remain.
func (s *TwoFactorService) Status(ctx context.Context, user domain.User) (Status, error) {
	cred, err := s.Store.Credentials().GetCredentialByUserID(ctx, user.ID)
	if errors.Is(err, store.ErrNotFound) {
		return Status{State: domain.StateDisabled}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("load credential: %w", err)
	}

	remaining, err := s.BackupCodes.Remaining(ctx, s.Store, user.ID)
	if err != nil {
		return Status{}, fmt.Errorf("count backup codes: %w", err)
	}

	return Status{State: cred.State(), BackupCodesRemaining: remaining}, nil
}

// acceptStep records a matched TOTP step. For a PENDING credential this is
// the confirmation; for an ENABLED one the step must be newer than the last
// accepted step so a code can not be replayed inside its window.
func (s *TwoFactorService) acceptStep(ctx context.Context, tx store.Tx, userID string, pending bool, step int64, now time.Time) (bool, error) {
	if pending {
		ok, err := tx.Credentials().ConfirmCredential(ctx, userID, step, now)
		if err != nil {
			return false, fmt.Errorf("confirm credential: %w", err)
		}
		return ok, nil
	}

	ok, err := tx.Credentials().AdvanceLastUsedStep(ctx, userID, step, now)
	if err != nil {
		return false, fmt.Errorf("record totp step: %w", err)
	}
	return ok, nil
}

func (s *TwoFactorService) notifyEnabled(ctx context.Context, user domain.User) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Notify2FAEnabled(ctx, user); err != nil {
		slogx.FromContext(ctx).Warn("2fa enabled notification failed", "user_id", user.ID, "err", err)
	}
}

func (s *TwoFactorService) openSecret(cred domain.TwoFactorCredential) (string, error) {
	raw, err := s.Sealer.Open(cred.SecretSealed, sealAAD(cred.UserID))
	if err != nil {
		return "", fmt.Errorf("open secret: %w", err)
	}
	return string(raw), nil
}

func (s *TwoFactorService) backupCodeCount() int {
	if s.BackupCodeCount == 0 {
		return DefaultBackupCodeCount
	}
	return s.BackupCodeCount
}

func (s *TwoFactorService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// sealAAD binds a sealed secret to its owner so rows can not be swapped.
func sealAAD(userID string) []byte {
	return []byte("twofactor/totp-secret/" + userID)
}

func accountLabel(u domain.User) string {
	if u.Email != "" {
		return u.Email
	}
	return u.ID
}
