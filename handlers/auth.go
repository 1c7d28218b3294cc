// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/Him70043/Online-Voting-System-sub000/auth"
	"github.com/Him70043/Online-Voting-System-sub000/cliparse"
	"github.com/Him70043/Online-Voting-System-sub000/middleware"
	"github.com/Him70043/Online-Voting-System-sub000/models"
	"github.com/Him70043/Online-Voting-System-sub000/rateguard"
)

type AuthHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	guard *rateguard.Guard
}

func NewAuthHandler(db *sql.DB, cfg cliparse.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, guard: rateguard.New(db)}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if len(req.Username) < 2 || len(req.Username) > 50 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "username must be 2-50 characters")
		return
	}
	if len(req.Password) < 8 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	voterID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate voter ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	// The UNIQUE constraint on voter.username decides races between
	// concurrent registrations of the same name.
	_, err = h.db.Exec(`
		INSERT INTO voter (id, username, password_hash, role, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, voterID, req.Username, hash, models.RoleVoter, true, time.Now())

	if err != nil {
		if isDuplicateKey(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "Username already taken")
			return
		}
		slog.Error("failed to insert voter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	slog.Info("voter registered", "username", req.Username)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterResponse{
		Username: req.Username,
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Username == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "username and password are required")
		return
	}

	locked, err := h.guard.IsLocked(r.Context(), req.Username)
	if err != nil {
		slog.Error("failed to check lockout", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if locked {
		middleware.ErrorResponse(w, http.StatusLocked, "Too many failed attempts, try again later")
		return
	}

	var passwordHash string
	var active bool
	err = h.db.QueryRow(`
		SELECT password_hash, active FROM voter WHERE username = $1
	`, req.Username).Scan(&passwordHash, &active)

	if err == sql.ErrNoRows {
		h.recordFailure(r, req.Username)
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		slog.Error("failed to query voter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if !active || !auth.CheckPassword(passwordHash, req.Password) {
		h.recordFailure(r, req.Username)
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if err := h.guard.RecordAttempt(r.Context(), req.Username, true); err != nil {
		slog.Warn("failed to clear login attempts", "username", req.Username, "error", err)
		// Non-fatal: the login itself succeeded
	}

	token := auth.GenerateSessionToken(req.Username, h.cfg.SessionSalt, auth.DefaultSessionTTL)

	slog.Info("voter logged in", "username", req.Username)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		SessionToken: token,
	})
}

func (h *AuthHandler) recordFailure(r *http.Request, username string) {
	if err := h.guard.RecordAttempt(r.Context(), username, false); err != nil {
		slog.Error("failed to record login attempt", "username", username, "error", err)
	}
}

// isDuplicateKey recognizes unique-constraint failures from both supported
// drivers.
func isDuplicateKey(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
