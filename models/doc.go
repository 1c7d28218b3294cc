// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - RegisterRequest / LoginRequest: username, password
  - CastVoteRequest: option_id
  - CreateQuestionRequest: title, description
  - AddOptionRequest: display_name, description
  - PurgeAuditRequest: older_than_days

# Response Types

Types for JSON responses:

  - LoginResponse: session_token
  - CastVoteResponse: message, tally
  - MyVoteResponse: voted, option_id, cast_at
  - ResetTalliesResponse: votes_deleted
  - PurgeAuditResponse: entries_deleted
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Voter: registered voter (password hash never serialized)
  - Question: voting topic and lifecycle state
  - Option: candidate with denormalized vote_count
  - OptionCount: one row of a tally snapshot
  - AuditEntry: immutable record of a vote submission attempt

# Constants

Question status values:

	StatusOpen   = "open"
	StatusClosed = "closed"

Voter roles:

	RoleVoter = "voter"
	RoleAdmin = "admin"

Audit entry statuses:

	AuditNormal  = "NORMAL"
	AuditFlagged = "FLAGGED"
*/
package models
