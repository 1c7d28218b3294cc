// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the voting API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Authentication:

	POST /auth/register - Register a voter
	POST /auth/login    - Log in (returns session token; lockout-protected)

Voting (requires X-Session-Token for write/personal routes):

	GET  /questions               - List questions
	GET  /questions/{id}          - Question with options and live counts
	POST /questions/{id}/votes    - Cast a vote (at most once per question)
	GET  /questions/{id}/results  - Live tally snapshot
	GET  /questions/{id}/my-vote  - The caller's recorded choice

Administration (requires X-Admin-Key):

	POST   /admin/questions              - Create question
	POST   /admin/questions/{id}/options - Add option
	POST   /admin/questions/{id}/close   - Stop accepting votes
	POST   /admin/questions/{id}/reset   - Delete votes and zero counters
	GET    /admin/voters                 - List voters
	DELETE /admin/voters/{username}      - Deactivate voter
	GET    /admin/audit                  - Review audit log (?flagged=true)
	GET    /admin/audit/export           - CSV export
	POST   /admin/audit/purge            - Age-based retention purge

# Handler Initialization

The router creates handler instances with dependency injection:

	authHandler := handlers.NewAuthHandler(db, cfg)
	votingHandler := handlers.NewVotingHandler(db, cfg)
	adminHandler := handlers.NewAdminHandler(db, cfg)

All handlers receive the database connection and configuration.
*/
package router
