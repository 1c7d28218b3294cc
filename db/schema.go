// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The DDL sticks to types both lib/pq and modernc.org/sqlite accept.
// Timestamps are always written explicitly by the application.
const schema = `
-- Voters
CREATE TABLE IF NOT EXISTS voter (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'voter' CHECK (role IN ('voter', 'admin')),
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_voter_username ON voter(username);

-- Questions
CREATE TABLE IF NOT EXISTS question (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    status TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'closed')),
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_question_status ON question(status);

-- Options
CREATE TABLE IF NOT EXISTS option (
    id TEXT PRIMARY KEY,
    question_id TEXT NOT NULL REFERENCES question(id) ON DELETE CASCADE,
    display_name TEXT NOT NULL,
    description TEXT,
    vote_count INTEGER NOT NULL DEFAULT 0 CHECK (vote_count >= 0)
);

CREATE INDEX IF NOT EXISTS idx_option_question_id ON option(question_id);

-- Votes
-- The composite primary key is what makes a vote at-most-once: a second
-- INSERT for the same (voter_id, question_id) fails inside the casting
-- transaction regardless of how many callers raced to it.
CREATE TABLE IF NOT EXISTS vote (
    voter_id TEXT NOT NULL REFERENCES voter(id) ON DELETE CASCADE,
    question_id TEXT NOT NULL REFERENCES question(id) ON DELETE CASCADE,
    option_id TEXT NOT NULL REFERENCES option(id) ON DELETE CASCADE,
    cast_at TIMESTAMP NOT NULL,
    PRIMARY KEY (voter_id, question_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_question_id ON vote(question_id);
CREATE INDEX IF NOT EXISTS idx_vote_option_id ON vote(option_id);

-- Audit entries (append-only; removed only by the retention purge)
CREATE TABLE IF NOT EXISTS audit_entry (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL,
    question_id TEXT NOT NULL,
    submitted_at TIMESTAMP NOT NULL,
    source_address TEXT NOT NULL,
    client_fingerprint TEXT,
    anomaly_score REAL NOT NULL CHECK (anomaly_score >= 0 AND anomaly_score <= 1),
    status TEXT NOT NULL CHECK (status IN ('NORMAL', 'FLAGGED')),
    outcome TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_source ON audit_entry(source_address, submitted_at);
CREATE INDEX IF NOT EXISTS idx_audit_submitted_at ON audit_entry(submitted_at);
CREATE INDEX IF NOT EXISTS idx_audit_status ON audit_entry(status);

-- Login attempts (RateGuard state, unrelated to vote idempotency)
CREATE TABLE IF NOT EXISTS login_attempt (
    username TEXT NOT NULL,
    attempted_at TIMESTAMP NOT NULL,
    success BOOLEAN NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_login_attempt_username ON login_attempt(username, attempted_at);
`
