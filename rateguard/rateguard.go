// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package rateguard

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Lockout policy defaults.
const (
	// MaxFailures is the number of failed attempts that triggers a lockout.
	MaxFailures = 3

	// Cooldown is how long an identity stays locked after MaxFailures.
	Cooldown = 15 * time.Minute
)

// Guard tracks failed login attempts per identity and enforces a cool-down
// lockout. State lives in the login_attempt table; it is entirely separate
// from vote idempotency.
type Guard struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Guard {
	return &Guard{db: db, now: time.Now}
}

// RecordAttempt records a login attempt. A successful attempt clears the
// identity's failed counter.
func (g *Guard) RecordAttempt(ctx context.Context, identity string, success bool) error {
	if success {
		// Success resets the window: old failures no longer count.
		_, err := g.db.ExecContext(ctx, `
			DELETE FROM login_attempt WHERE username = $1
		`, identity)
		if err != nil {
			return fmt.Errorf("failed to clear login attempts: %w", err)
		}
		return nil
	}

	_, err := g.db.ExecContext(ctx, `
		INSERT INTO login_attempt (username, attempted_at, success)
		VALUES ($1, $2, $3)
	`, identity, g.now(), false)
	if err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}
	return nil
}

// IsLocked reports whether the identity has reached MaxFailures within the
// cool-down window.
func (g *Guard) IsLocked(ctx context.Context, identity string) (bool, error) {
	count, err := g.FailedCountSince(ctx, identity, Cooldown)
	if err != nil {
		return false, err
	}
	return count >= MaxFailures, nil
}

// FailedCountSince counts failed attempts for the identity within the
// trailing window.
func (g *Guard) FailedCountSince(ctx context.Context, identity string, window time.Duration) (int, error) {
	var count int
	err := g.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM login_attempt
		WHERE username = $1 AND success = FALSE AND attempted_at > $2
	`, identity, g.now().Add(-window)).Scan(&count)

	if err != nil {
		return 0, fmt.Errorf("failed to count login attempts: %w", err)
	}
	return count, nil
}
