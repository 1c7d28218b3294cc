// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Online Voting System API server.

The service lets registered voters cast exactly one vote per question
(favorite programming language, best team member, ...) and exposes live
tallies, while administrators manage questions, voters, and the audit log.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=voting.db go run main.go

Or with flags:

	go run main.go -p 3318 -t postgres -d "postgres://..."

A .env file in the working directory is loaded if present.

# Configuration

Required settings:

  - DATABASE_URL (-d): Connection string, or a file path for sqlite
  - ADMIN_KEY_SALT (--admin-salt): Secret for the admin key HMAC
  - SESSION_SALT (--session-salt): Secret for session token signatures

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"

# Architecture

The server uses a handler-based architecture with dependency injection:

  - ledger: The vote-casting core - at-most-once application per
    (voter, question), tally consistency, audit with anomaly scoring
  - rateguard: Login lockout tracking
  - handlers: HTTP request handlers (auth, voting, admin)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response types
  - auth: Passwords, session tokens, admin key
  - db: Driver selection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
