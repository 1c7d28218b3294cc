// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package rateguard tracks failed login attempts and enforces lockouts.

# Contract

	g := rateguard.New(conn)

	locked, err := g.IsLocked(ctx, username)
	err = g.RecordAttempt(ctx, username, success)
	n, err := g.FailedCountSince(ctx, username, window)

After MaxFailures (3) failed attempts within the Cooldown window (15
minutes) the identity is locked; a successful attempt clears the failed
counter. State lives in the login_attempt table and is independent of the
vote ledger - login lockout and vote idempotency must never be conflated.
*/
package rateguard
