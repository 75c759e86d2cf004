package domain

import "time"

// State is the position of a user in the 2FA lifecycle.
type State string

const (
	StateDisabled State = "disabled"
	StatePending  State = "pending"
	StateEnabled  State = "enabled"
)

// TwoFactorCredential holds a user's TOTP seed. At most one exists per user.
type TwoFactorCredential struct {
	ID           string
	UserID       string
	SecretSealed []byte // TOTP secret, sealed with the master key
	Confirmed    bool
	Enabled      bool  // set together with Confirmed, never on its own
	LastUsedStep int64 // newest TOTP time step accepted, 0 if none
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ConfirmedAt  *time.Time
}

// State derives the lifecycle state from the confirmation flag. A nil
// credential means DISABLED.
func (c *TwoFactorCredential) State() State {
	switch {
	case c == nil:
		return StateDisabled
	case c.Confirmed:
		return StateEnabled
	default:
		return StatePending
	}
}
