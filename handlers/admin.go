// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Him70043/Online-Voting-System-sub000/auth"
	"github.com/Him70043/Online-Voting-System-sub000/cliparse"
	"github.com/Him70043/Online-Voting-System-sub000/middleware"
	"github.com/Him70043/Online-Voting-System-sub000/models"
)

// defaultAuditRetentionDays is used when a purge request gives no age.
const defaultAuditRetentionDays = 90

type AdminHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAdminHandler(db *sql.DB, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{db: db, cfg: cfg}
}

// requireAdmin validates the X-Admin-Key header, writing a 401 on failure.
func (h *AdminHandler) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	adminKey := r.Header.Get("X-Admin-Key")
	if err := auth.ValidateAdminKey(adminKey, h.cfg.AdminKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid admin key")
		return false
	}
	return true
}

// CreateQuestion handles POST /admin/questions
func (h *AdminHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req models.CreateQuestionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Title == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}

	questionID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate question ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create question")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO question (id, title, description, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, questionID, req.Title, req.Description, models.StatusOpen, time.Now())

	if err != nil {
		slog.Error("failed to insert question", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create question")
		return
	}

	slog.Info("question created", "question_id", questionID, "title", req.Title)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateQuestionResponse{
		QuestionID: questionID,
	})
}

// AddOption handles POST /admin/questions/:id/options
func (h *AdminHandler) AddOption(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	questionID := r.PathValue("id")
	if questionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question_id is required")
		return
	}

	var req models.AddOptionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.DisplayName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "display_name is required")
		return
	}

	var status string
	err := h.db.QueryRow(`SELECT status FROM question WHERE id = $1`, questionID).Scan(&status)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	if err != nil {
		slog.Error("failed to query question", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if status != models.StatusOpen {
		middleware.ErrorResponse(w, http.StatusConflict, "Cannot add options to a closed question")
		return
	}

	optionID, err := auth.GenerateID(12)
	if err != nil {
		slog.Error("failed to generate option ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create option")
		return
	}

	_, err = h.db.Exec(`
		INSERT INTO option (id, question_id, display_name, description, vote_count)
		VALUES ($1, $2, $3, $4, 0)
	`, optionID, questionID, req.DisplayName, req.Description)

	if err != nil {
		slog.Error("failed to insert option", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create option")
		return
	}

	slog.Info("option added", "question_id", questionID, "option_id", optionID)

	middleware.JSONResponse(w, http.StatusCreated, models.AddOptionResponse{
		OptionID: optionID,
	})
}

// CloseQuestion handles POST /admin/questions/:id/close
func (h *AdminHandler) CloseQuestion(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	questionID := r.PathValue("id")
	if questionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question_id is required")
		return
	}

	res, err := h.db.Exec(`
		UPDATE question SET status = $1 WHERE id = $2 AND status = $3
	`, models.StatusClosed, questionID, models.StatusOpen)

	if err != nil {
		slog.Error("failed to close question", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to close question")
		return
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		var exists bool
		if err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM question WHERE id = $1)`, questionID).Scan(&exists); err == nil && !exists {
			middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
			return
		}
		middleware.ErrorResponse(w, http.StatusConflict, "Question is not open")
		return
	}

	slog.Info("question closed", "question_id", questionID)

	w.WriteHeader(http.StatusNoContent)
}

// ListVoters handles GET /admin/voters
func (h *AdminHandler) ListVoters(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	rows, err := h.db.Query(`
		SELECT id, username, role, active, created_at
		FROM voter
		ORDER BY created_at
	`)
	if err != nil {
		slog.Error("failed to query voters", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	voters := []models.Voter{}
	for rows.Next() {
		var v models.Voter
		if err := rows.Scan(&v.ID, &v.Username, &v.Role, &v.Active, &v.CreatedAt); err != nil {
			slog.Error("failed to scan voter", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		voters = append(voters, v)
	}

	middleware.JSONResponse(w, http.StatusOK, voters)
}

// DeactivateVoter handles DELETE /admin/voters/:username
// Deactivation keeps the voter's cast votes; it only blocks future activity.
func (h *AdminHandler) DeactivateVoter(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	username := r.PathValue("username")
	if username == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "username is required")
		return
	}

	res, err := h.db.Exec(`UPDATE voter SET active = FALSE WHERE username = $1`, username)
	if err != nil {
		slog.Error("failed to deactivate voter", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to deactivate voter")
		return
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Voter not found")
		return
	}

	slog.Info("voter deactivated", "username", username)

	w.WriteHeader(http.StatusNoContent)
}

// ResetTallies handles POST /admin/questions/:id/reset
// Deletes the question's votes and zeroes its option counters in one
// transaction so the conservation invariant holds throughout.
func (h *AdminHandler) ResetTallies(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	questionID := r.PathValue("id")
	if questionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question_id is required")
		return
	}

	var exists bool
	err := h.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM question WHERE id = $1)`, questionID).Scan(&exists)
	if err != nil {
		slog.Error("failed to query question", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !exists {
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM vote WHERE question_id = $1`, questionID)
	if err != nil {
		slog.Error("failed to delete votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reset tallies")
		return
	}
	deleted, _ := res.RowsAffected()

	_, err = tx.Exec(`UPDATE option SET vote_count = 0 WHERE question_id = $1`, questionID)
	if err != nil {
		slog.Error("failed to zero vote counts", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reset tallies")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit reset", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reset tallies")
		return
	}

	slog.Info("tallies reset", "question_id", questionID, "votes_deleted", deleted)

	middleware.JSONResponse(w, http.StatusOK, models.ResetTalliesResponse{
		VotesDeleted: deleted,
	})
}

// ListAudit handles GET /admin/audit
// Pass ?flagged=true to see only FLAGGED entries.
func (h *AdminHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	query := `
		SELECT id, username, question_id, submitted_at, source_address,
		       client_fingerprint, anomaly_score, status, outcome
		FROM audit_entry
	`
	args := []interface{}{}
	if r.URL.Query().Get("flagged") == "true" {
		query += ` WHERE status = $1`
		args = append(args, models.AuditFlagged)
	}
	query += ` ORDER BY submitted_at DESC LIMIT 200`

	rows, err := h.db.Query(query, args...)
	if err != nil {
		slog.Error("failed to query audit entries", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	entries, err := scanAuditEntries(rows)
	if err != nil {
		slog.Error("failed to scan audit entry", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	for i := range entries {
		entries[i].Age = humanize.Time(entries[i].SubmittedAt)
	}

	middleware.JSONResponse(w, http.StatusOK, entries)
}

// ExportAudit handles GET /admin/audit/export
// Streams the full audit log as CSV.
func (h *AdminHandler) ExportAudit(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	rows, err := h.db.Query(`
		SELECT id, username, question_id, submitted_at, source_address,
		       client_fingerprint, anomaly_score, status, outcome
		FROM audit_entry
		ORDER BY submitted_at
	`)
	if err != nil {
		slog.Error("failed to query audit entries", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	entries, err := scanAuditEntries(rows)
	if err != nil {
		slog.Error("failed to scan audit entry", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="audit.csv"`)

	cw := csv.NewWriter(w)
	cw.Write([]string{"id", "username", "question_id", "submitted_at",
		"source_address", "client_fingerprint", "anomaly_score", "status", "outcome"})

	for _, e := range entries {
		cw.Write([]string{
			e.ID,
			e.Username,
			e.QuestionID,
			e.SubmittedAt.UTC().Format(time.RFC3339),
			e.SourceAddress,
			e.ClientFingerprint,
			strconv.FormatFloat(e.AnomalyScore, 'f', 4, 64),
			e.Status,
			e.Outcome,
		})
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.Error("failed to write CSV export", "error", err)
	}
}

// PurgeAudit handles POST /admin/audit/purge
// Deletes audit entries older than the requested retention age.
func (h *AdminHandler) PurgeAudit(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	var req models.PurgeAuditRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	days := req.OlderThanDays
	if days == 0 {
		days = defaultAuditRetentionDays
	}
	if days < 1 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "older_than_days must be positive")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -days)

	res, err := h.db.Exec(`DELETE FROM audit_entry WHERE submitted_at < $1`, cutoff)
	if err != nil {
		slog.Error("failed to purge audit entries", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to purge audit entries")
		return
	}

	deleted, _ := res.RowsAffected()

	slog.Info("audit entries purged", "older_than_days", days, "deleted", deleted)

	middleware.JSONResponse(w, http.StatusOK, models.PurgeAuditResponse{
		EntriesDeleted: deleted,
	})
}

func scanAuditEntries(rows *sql.Rows) ([]models.AuditEntry, error) {
	entries := []models.AuditEntry{}
	for rows.Next() {
		var e models.AuditEntry
		var fingerprint sql.NullString
		if err := rows.Scan(&e.ID, &e.Username, &e.QuestionID, &e.SubmittedAt,
			&e.SourceAddress, &fingerprint, &e.AnomalyScore, &e.Status, &e.Outcome); err != nil {
			return nil, err
		}
		e.ClientFingerprint = fingerprint.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
