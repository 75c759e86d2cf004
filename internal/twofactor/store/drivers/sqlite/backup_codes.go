package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/twofactor/internal/twofactor/domain"
)

const (
	createBackupCode = `
INSERT INTO backup_codes (id, user_id, code_hash, used, created_at)
VALUES (?, ?, ?, 0, ?)`

	// The used = 0 guard makes this a compare-and-swap: of any number of
	// concurrent callers, exactly one sees a row affected.
	consumeBackupCode = `
UPDATE backup_codes
SET used = 1, used_at = ?
WHERE user_id = ? AND code_hash = ? AND used = 0`

	deleteAllBackupCodes = `
DELETE FROM backup_codes WHERE user_id = ?`

	countUnusedBackupCodes = `
SELECT COUNT(*) FROM backup_codes WHERE user_id = ? AND used = 0`

	deleteUsedBackupCodesBefore = `
DELETE FROM backup_codes WHERE used = 1 AND used_at < ?`
)

type backupCodesRepo struct {
	db dbtx
}

func (r *backupCodesRepo) CreateBackupCodes(ctx context.Context, codes []domain.BackupCode) error {
	for _, c := range codes {
		if _, err := r.db.ExecContext(ctx, createBackupCode, c.ID, c.UserID, c.CodeHash, toMillis(c.CreatedAt)); err != nil {
			return fmt.Errorf("insert backup code: %w", mapConstraint(err))
		}
	}
	return nil
}

func (r *backupCodesRepo) ConsumeBackupCode(ctx context.Context, userID, codeHash string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, consumeBackupCode, toMillis(at), userID, codeHash)
	if err != nil {
		return false, err
	}
	return affectedOne(res)
}

func (r *backupCodesRepo) DeleteAllBackupCodes(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, deleteAllBackupCodes, userID)
	return err
}

func (r *backupCodesRepo) CountUnusedBackupCodes(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countUnusedBackupCodes, userID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *backupCodesRepo) DeleteUsedBackupCodesBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteUsedBackupCodesBefore, toMillis(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
