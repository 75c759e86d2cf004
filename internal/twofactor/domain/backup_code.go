package domain

import "time"

// BackupCode is a single-use recovery code. Only a keyed fingerprint of the
// code is kept.
type BackupCode struct {
	ID        string
	UserID    string
	CodeHash  string
	Used      bool
	CreatedAt time.Time
	UsedAt    *time.Time // set iff Used
}
