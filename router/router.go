// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/Him70043/Online-Voting-System-sub000/cliparse"
	"github.com/Him70043/Online-Voting-System-sub000/handlers"
	"github.com/Him70043/Online-Voting-System-sub000/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	votingHandler := handlers.NewVotingHandler(db, cfg)
	adminHandler := handlers.NewAdminHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Authentication
	mux.HandleFunc("POST /auth/register", middleware.WithLogging(authHandler.Register))
	mux.HandleFunc("POST /auth/login", middleware.WithLogging(authHandler.Login))

	// Voting operations (session-authenticated)
	mux.HandleFunc("GET /questions", middleware.WithLogging(votingHandler.ListQuestions))
	mux.HandleFunc("GET /questions/{id}", middleware.WithLogging(votingHandler.GetQuestion))
	mux.HandleFunc("POST /questions/{id}/votes", middleware.WithLogging(votingHandler.CastVote))
	mux.HandleFunc("GET /questions/{id}/results", middleware.WithLogging(votingHandler.GetResults))
	mux.HandleFunc("GET /questions/{id}/my-vote", middleware.WithLogging(votingHandler.GetMyVote))

	// Administration (requires X-Admin-Key)
	mux.HandleFunc("POST /admin/questions", middleware.WithLogging(adminHandler.CreateQuestion))
	mux.HandleFunc("POST /admin/questions/{id}/options", middleware.WithLogging(adminHandler.AddOption))
	mux.HandleFunc("POST /admin/questions/{id}/close", middleware.WithLogging(adminHandler.CloseQuestion))
	mux.HandleFunc("POST /admin/questions/{id}/reset", middleware.WithLogging(adminHandler.ResetTallies))
	mux.HandleFunc("GET /admin/voters", middleware.WithLogging(adminHandler.ListVoters))
	mux.HandleFunc("DELETE /admin/voters/{username}", middleware.WithLogging(adminHandler.DeactivateVoter))
	mux.HandleFunc("GET /admin/audit", middleware.WithLogging(adminHandler.ListAudit))
	mux.HandleFunc("GET /admin/audit/export", middleware.WithLogging(adminHandler.ExportAudit))
	mux.HandleFunc("POST /admin/audit/purge", middleware.WithLogging(adminHandler.PurgeAudit))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("online-voting-system API v1"))
	})

	return mux
}
