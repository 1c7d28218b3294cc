// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Opening a Connection

Open selects the driver from the configured database type:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

Supported types are "postgres" (github.com/lib/pq) and "sqlite"
(modernc.org/sqlite, cgo-free). SQLite connections are limited to a single
open connection because SQLite allows only one writer.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

The schema includes:

  - voter: Registered voters with credentials and active flag
  - question: Voting topics (open/closed)
  - option: Candidates per question with a denormalized vote_count
  - vote: One row per (voter, question); the composite primary key is
    the storage-level uniqueness that makes vote casting at-most-once
  - audit_entry: Append-only submissions log with anomaly scores
  - login_attempt: Failed/successful login attempts for lockout tracking

# Relationships

	question 1──* option
	question 1──* vote
	voter    1──* vote
	option   1──* vote

All foreign keys use ON DELETE CASCADE.

# Indexes

Performance indexes on:

  - voter.username (unique)
  - question.status
  - option.question_id
  - vote.question_id, vote.option_id
  - audit_entry.(source_address, submitted_at) for the anomaly window scan
  - login_attempt.(username, attempted_at)
*/
package db
