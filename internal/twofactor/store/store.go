package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/twofactor/internal/twofactor/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement it.
// Repositories obtained from a Tx are bound to that transaction; the 2FA
// lifecycle reads state and writes in one Tx so a precondition can not go
// stale between the check and the write.
type Store interface {
	Credentials() Credentials
	BackupCodes() BackupCodes

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing if fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Credentials interface {
	// GetCredentialByUserID returns the user's credential or ErrNotFound.
	GetCredentialByUserID(ctx context.Context, userID string) (domain.TwoFactorCredential, error)

	// CreateCredential inserts a PENDING credential. ErrAlreadyExists if the
	// user already has one.
	CreateCredential(ctx context.Context, c domain.TwoFactorCredential) error

	// TouchCredential bumps updated_at, restarting the pending expiry clock.
	TouchCredential(ctx context.Context, userID string, at time.Time) error

	// ConfirmCredential flips a PENDING credential to confirmed and enabled
	// in one statement. lastUsedStep is recorded when it is newer than the
	// stored one. Reports false if the credential was not PENDING.
	ConfirmCredential(ctx context.Context, userID string, lastUsedStep int64, at time.Time) (bool, error)

	// AdvanceLastUsedStep records step as the newest accepted TOTP step iff
	// it is strictly newer than the stored one. Reports whether it was.
	AdvanceLastUsedStep(ctx context.Context, userID string, step int64, at time.Time) (bool, error)

	// DeleteCredential removes the credential; backup codes cascade.
	// Reports whether a row was removed.
	DeleteCredential(ctx context.Context, userID string) (bool, error)

	// DeleteStalePendingCredentials removes PENDING credentials not touched
	// since before, with their backup codes. Returns the number removed.
	DeleteStalePendingCredentials(ctx context.Context, before time.Time) (int64, error)
}

type BackupCodes interface {
	// CreateBackupCodes inserts a batch of unused codes.
	CreateBackupCodes(ctx context.Context, codes []domain.BackupCode) error

	// ConsumeBackupCode marks the matching unused code as used in a single
	// conditional update. Reports true for exactly one caller per code.
	ConsumeBackupCode(ctx context.Context, userID, codeHash string, at time.Time) (bool, error)

	// DeleteAllBackupCodes removes every code for a user, used or not.
	DeleteAllBackupCodes(ctx context.Context, userID string) error

	// CountUnusedBackupCodes returns the number of codes still redeemable.
	CountUnusedBackupCodes(ctx context.Context, userID string) (int, error)

	// DeleteUsedBackupCodesBefore is housekeeping for spent codes.
	DeleteUsedBackupCodesBefore(ctx context.Context, before time.Time) (int64, error)
}
