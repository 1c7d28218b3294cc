// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DefaultSessionTTL is how long an issued session token is honored.
const DefaultSessionTTL = 12 * time.Hour

// HashPassword hashes a plaintext password with bcrypt at the default cost
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext matches the stored bcrypt hash
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateSessionToken creates a signed, self-contained session token:
// base64(username).expiry-unix.base64(HMAC(username|expiry)). Nothing is
// stored server-side; verification recomputes the signature.
func GenerateSessionToken(username, salt string, ttl time.Duration) string {
	expiry := time.Now().Add(ttl).Unix()
	payload := username + "|" + strconv.FormatInt(expiry, 10)

	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(payload))
	sig := strings.TrimRight(base64.URLEncoding.EncodeToString(h.Sum(nil)), "=")

	encoded := strings.TrimRight(base64.URLEncoding.EncodeToString([]byte(username)), "=")
	return encoded + "." + strconv.FormatInt(expiry, 10) + "." + sig
}

// VerifySessionToken validates a session token and returns the username it
// was issued for. Returns ErrInvalidToken or ErrTokenExpired.
func VerifySessionToken(token, salt string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", ErrInvalidToken
	}

	raw, err := base64.URLEncoding.DecodeString(pad(parts[0]))
	if err != nil {
		return "", ErrInvalidToken
	}
	username := string(raw)

	expiry, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", ErrInvalidToken
	}

	payload := username + "|" + parts[1]
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(payload))
	expected := strings.TrimRight(base64.URLEncoding.EncodeToString(h.Sum(nil)), "=")

	if !hmac.Equal([]byte(parts[2]), []byte(expected)) {
		return "", ErrInvalidToken
	}

	if time.Now().Unix() > expiry {
		return "", ErrTokenExpired
	}

	return username, nil
}

// pad restores base64 padding stripped when the token was issued
func pad(s string) string {
	if m := len(s) % 4; m != 0 {
		return s + strings.Repeat("=", 4-m)
	}
	return s
}
