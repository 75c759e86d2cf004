/*
Package authsdk provides a client SDK for the two-factor authentication service.

# Overview

The service does not issue credentials of its own. Callers authenticate with
an access token from the identity provider and the SDK sends it as a bearer
token on every request.

	client := authsdk.NewSDKClient("https://2fa.example.com")

	// Check service health
	health, err := client.GetLiveness(ctx)

	// Act as a user
	session := client.NewSession(accessToken)

# Enrolment

	enable, err := session.Enable(ctx)
	// show enable.QRCode and enable.BackupCodes to the user once

	res, err := session.Verify(ctx, "123456")
	if res.NewlyEnabled {
		// 2FA is now active
	}

Calling Enable again before verifying keeps the same secret and replaces
the backup codes.

# Errors

Failed requests return an *APIError. Compare with the predefined values:

	_, err := session.Verify(ctx, code)
	if errors.Is(err, authsdk.ErrInvalidCode) {
		// wrong or already used code
	}

The same APIError values are written by the server, which keeps both sides
of the wire in one place.
*/
package authsdk
