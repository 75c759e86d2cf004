package authsdk

// ============================================================================
// Error Types
// ============================================================================

// ErrorResponse is the JSON error envelope returned by every endpoint.
// Client code should use the APIError type from errors.go instead.
type ErrorResponse struct {
	// Error is the machine-readable code (e.g., "invalid_code", "not_enabled")
	Error string `json:"error" example:"invalid_code"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description" example:"The provided code is not valid"`
}

// ============================================================================
// Two-Factor Types
// ============================================================================

// State names reported by the status endpoint.
const (
	StateDisabled = "disabled"
	StatePending  = "pending"
	StateEnabled  = "enabled"
)

// EnableResponse is returned from POST /v1/2fa/enable. The secret and the
// backup codes are shown once; the server keeps only sealed or hashed forms.
type EnableResponse struct {
	Message string `json:"message" example:"Scan the QR code and verify with a code from your authenticator app"`

	// QRCode is a data:image/png;base64 URL of the provisioning URI
	QRCode string `json:"qr_code" example:"data:image/png;base64,iVBORw0KGgo..."`

	// ProvisioningURI is the otpauth:// URI encoded in the QR code
	ProvisioningURI string `json:"provisioning_uri" example:"otpauth://totp/Example:alice@example.com?secret=JBSWY3DPEHPK3PXP&issuer=Example"`

	// SecretKey is the base32 secret for manual entry
	SecretKey string `json:"secret_key" example:"JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP"`

	// BackupCodes is the freshly generated batch of single-use codes
	BackupCodes []string `json:"backup_codes" example:"7XK2M9QAHD,Q4ZP0R8TNB"`
}

// VerifyRequest is the body of POST /v1/2fa/verify.
type VerifyRequest struct {
	// Token is a 6-digit TOTP code or a backup code
	Token string `json:"token" example:"123456"`
}

// VerifyResponse is returned when a code is accepted.
type VerifyResponse struct {
	Message string `json:"message" example:"2FA verified successfully"`

	// NewlyEnabled is true when this verification completed enrolment
	NewlyEnabled bool `json:"newly_enabled"`
}

// BackupCodesResponse is returned from POST /v1/2fa/backup-codes.
type BackupCodesResponse struct {
	Message     string   `json:"message" example:"New backup codes generated"`
	BackupCodes []string `json:"backup_codes" example:"7XK2M9QAHD,Q4ZP0R8TNB"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message" example:"2FA disabled successfully"`
}

// StatusResponse is returned from GET /v1/2fa/status.
type StatusResponse struct {
	// State is one of "disabled", "pending", "enabled"
	State string `json:"state" example:"enabled"`

	// BackupCodesRemaining counts unused backup codes
	BackupCodesRemaining int `json:"backup_codes_remaining" example:"9"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the build version of the service
	Version string `json:"version,omitempty"`

	// Checks contains individual dependency checks (readyz only)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`
}
