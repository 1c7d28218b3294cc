// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the voting API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - AuthHandler: Voter registration and login (lockout-protected)
  - VotingHandler: Questions, vote casting, live tallies
  - AdminHandler: Question/option setup, voter management, audit review

Handlers are created via constructor functions that accept *sql.DB and Config:

	votingHandler := handlers.NewVotingHandler(db, cfg)

# Voting Flow

Voters register once, log in, and vote at most once per question:

	POST /auth/register            → Register
	POST /auth/login               → Login (returns session_token)
	GET  /questions                → ListQuestions
	GET  /questions/{id}           → GetQuestion (options + live counts)
	POST /questions/{id}/votes     → CastVote
	GET  /questions/{id}/results   → GetResults
	GET  /questions/{id}/my-vote   → GetMyVote

Voter operations require the X-Session-Token header.

# Vote Casting

CastVote delegates to the ledger package, which applies the vote at most
once per (voter, question) and records an audit entry for every attempt.
The handler only maps outcomes to HTTP statuses:

	Success       → 201 with the fresh tally snapshot
	AlreadyVoted  → 409 "You have already voted on this question"
	InvalidOption → 400
	VoterNotFound → 401
	storage error → 503 (generic retry-later message; safe to retry)

# Admin Operations

Admin operations require the X-Admin-Key header:

	POST   /admin/questions               → CreateQuestion
	POST   /admin/questions/{id}/options  → AddOption
	POST   /admin/questions/{id}/close    → CloseQuestion
	POST   /admin/questions/{id}/reset    → ResetTallies (votes + counters, one tx)
	GET    /admin/voters                  → ListVoters
	DELETE /admin/voters/{username}       → DeactivateVoter
	GET    /admin/audit                   → ListAudit (?flagged=true)
	GET    /admin/audit/export            → ExportAudit (CSV)
	POST   /admin/audit/purge             → PurgeAudit (age-based retention)

# Login Lockout

Login attempts run through the rateguard package: three failures within
the cool-down lock the account (423) until the window passes. A successful
login clears the counter.
*/
package handlers
