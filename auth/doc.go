// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides authentication and token generation utilities.

# Admin Key

The service-wide admin key uses HMAC-SHA256 derived from the configured salt:

	adminKey := auth.GenerateAdminKey(salt)
	err := auth.ValidateAdminKey(adminKey, salt)

The key is URL-safe base64 encoded without padding. Since it's deterministic,
the same salt always produces the same key. This allows validation without
storing the key in the database.

# Session Tokens

Session tokens are signed and self-contained (username, expiry, HMAC):

	token := auth.GenerateSessionToken(username, salt, auth.DefaultSessionTTL)
	username, err := auth.VerifySessionToken(token, salt)

Verification recomputes the signature, so no session state is stored
server-side. Expired tokens return ErrTokenExpired.

# Passwords

Passwords are hashed with bcrypt (golang.org/x/crypto/bcrypt):

	hash, err := auth.HashPassword(password)
	ok := auth.CheckPassword(hash, password)

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

For privacy-preserving anomaly detection:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
