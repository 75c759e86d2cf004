package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/twofactor/internal/twofactor/domain"
)

const (
	getCredentialByUserID = `
SELECT id, user_id, secret_sealed, confirmed, enabled, last_used_step,
       created_at, updated_at, confirmed_at
FROM two_factor_credentials
WHERE user_id = ?`

	createCredential = `
INSERT INTO two_factor_credentials
    (id, user_id, secret_sealed, confirmed, enabled, last_used_step, created_at, updated_at)
VALUES (?, ?, ?, 0, 0, 0, ?, ?)`

	touchCredential = `
UPDATE two_factor_credentials SET updated_at = ? WHERE user_id = ?`

	confirmCredential = `
UPDATE two_factor_credentials
SET confirmed = 1,
    enabled = 1,
    confirmed_at = ?,
    updated_at = ?,
    last_used_step = MAX(last_used_step, ?)
WHERE user_id = ? AND confirmed = 0`

	advanceLastUsedStep = `
UPDATE two_factor_credentials
SET last_used_step = ?, updated_at = ?
WHERE user_id = ? AND last_used_step < ?`

	deleteCredential = `
DELETE FROM two_factor_credentials WHERE user_id = ?`

	deleteStalePendingCredentials = `
DELETE FROM two_factor_credentials WHERE confirmed = 0 AND updated_at < ?`
)

type credentialsRepo struct {
	db dbtx
}

func (r *credentialsRepo) GetCredentialByUserID(ctx context.Context, userID string) (domain.TwoFactorCredential, error) {
	var (
		c           domain.TwoFactorCredential
		createdAt   int64
		updatedAt   int64
		confirmedAt sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, getCredentialByUserID, userID).Scan(
		&c.ID,
		&c.UserID,
		&c.SecretSealed,
		&c.Confirmed,
		&c.Enabled,
		&c.LastUsedStep,
		&createdAt,
		&updatedAt,
		&confirmedAt,
	)
	if err != nil {
		return domain.TwoFactorCredential{}, mapNotFound(err)
	}

	c.CreatedAt = fromMillis(createdAt)
	c.UpdatedAt = fromMillis(updatedAt)
	c.ConfirmedAt = fromNullMillis(confirmedAt)
	return c, nil
}

func (r *credentialsRepo) CreateCredential(ctx context.Context, c domain.TwoFactorCredential) error {
	_, err := r.db.ExecContext(ctx, createCredential,
		c.ID,
		c.UserID,
		c.SecretSealed,
		toMillis(c.CreatedAt),
		toMillis(c.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *credentialsRepo) TouchCredential(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, touchCredential, toMillis(at), userID)
	return err
}

func (r *credentialsRepo) ConfirmCredential(ctx context.Context, userID string, lastUsedStep int64, at time.Time) (bool, error) {
	ms := toMillis(at)
	res, err := r.db.ExecContext(ctx, confirmCredential, ms, ms, lastUsedStep, userID)
	if err != nil {
		return false, err
	}
	return affectedOne(res)
}

func (r *credentialsRepo) AdvanceLastUsedStep(ctx context.Context, userID string, step int64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, advanceLastUsedStep, step, toMillis(at), userID, step)
	if err != nil {
		return false, err
	}
	return affectedOne(res)
}

func (r *credentialsRepo) DeleteCredential(ctx context.Context, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, deleteCredential, userID)
	if err != nil {
		return false, err
	}
	return affectedOne(res)
}

func (r *credentialsRepo) DeleteStalePendingCredentials(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteStalePendingCredentials, toMillis(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
