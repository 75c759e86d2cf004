package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/twofactor/internal/twofactor/domain"
	"github.com/aussiebroadwan/twofactor/internal/twofactor/store"
	"github.com/aussiebroadwan/twofactor/pkg/cryptox"
	"github.com/aussiebroadwan/twofactor/pkg/idx"
)

const (
	DefaultBackupCodeCount = 10
	MaxBackupCodeCount     = 100

	// BackupCodeLength characters of base32 give 50 bits per code.
	BackupCodeLength = 10
)

// BackupCodeManager issues and redeems single-use recovery codes. Only HMAC
// fingerprints reach the store, so plaintext codes exist only in the reply
// to the call that generated them.
type BackupCodeManager struct {
	Pepper []byte
	Now    func() time.Time
}

func NewBackupCodeManager(pepper []byte) *BackupCodeManager {
	return &BackupCodeManager{Pepper: pepper, Now: time.Now}
}

// Generate replaces every code the user has with count new ones and returns
// them in plaintext. Pass the caller's transaction as s so the swap is
// atomic with whatever else the caller writes.
func (m *BackupCodeManager) Generate(ctx context.Context, s store.Store, userID string, count int) ([]string, error) {
	if count < 1 || count > MaxBackupCodeCount {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}

	now := m.now()
	plain := make([]string, 0, count)
	rows := make([]domain.BackupCode, 0, count)
	seen := make(map[string]struct{}, count)

	for len(plain) < count {
		code, err := cryptox.GenerateCode(BackupCodeLength)
		if err != nil {
			return nil, fmt.Errorf("generate backup code: %w", err)
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}

		plain = append(plain, code)
		rows = append(rows, domain.BackupCode{
			ID:        idx.NewAt(now).String(),
			UserID:    userID,
			CodeHash:  cryptox.FingerprintCode(m.Pepper, code),
			CreatedAt: now,
		})
	}

	if err := s.BackupCodes().DeleteAllBackupCodes(ctx, userID); err != nil {
		return nil, fmt.Errorf("delete previous backup codes: %w", err)
	}
	if err := s.BackupCodes().CreateBackupCodes(ctx, rows); err != nil {
		return nil, fmt.Errorf("store backup codes: %w", err)
	}

	return plain, nil
}

// Consume redeems code for userID. It reports true at most once per code,
// however many callers race on it. Input is matched case-insensitively and
// ignores spaces and hyphens.
func (m *BackupCodeManager) Consume(ctx context.Context, s store.Store, userID, code string) (bool, error) {
	normalized, ok := NormalizeBackupCode(code)
	if !ok {
		return false, nil
	}

	hash := cryptox.FingerprintCode(m.Pepper, normalized)
	consumed, err := s.BackupCodes().ConsumeBackupCode(ctx, userID, hash, m.now())
	if err != nil {
		return false, fmt.Errorf("consume backup code: %w", err)
	}
	return consumed, nil
}

// Remaining counts the user's unused codes.
func (m *BackupCodeManager) Remaining(ctx context.Context, s store.Store, userID string) (int, error) {
	return s.BackupCodes().CountUnusedBackupCodes(ctx, userID)
}

// NormalizeBackupCode canonicalises user input. Letters commonly misread
// for digits are folded the Crockford way (O to 0, I and L to 1). Reports
// false if the result can not be a backup code.
func NormalizeBackupCode(code string) (string, bool) {
	var b strings.Builder
	b.Grow(BackupCodeLength)

	for _, r := range strings.ToUpper(strings.TrimSpace(code)) {
		switch r {
		case ' ', '-':
			continue
		case 'O':
			r = '0'
		case 'I', 'L':
			r = '1'
		}
		if !strings.ContainsRune(cryptox.CodeAlphabet, r) {
			return "", false
		}
		b.WriteRune(r)
	}

	if b.Len() != BackupCodeLength {
		return "", false
	}
	return b.String(), true
}

func (m *BackupCodeManager) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}
