// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/Him70043/Online-Voting-System-sub000/auth"
	"github.com/Him70043/Online-Voting-System-sub000/cliparse"
	"github.com/Him70043/Online-Voting-System-sub000/ledger"
	"github.com/Him70043/Online-Voting-System-sub000/middleware"
	"github.com/Him70043/Online-Voting-System-sub000/models"
)

type VotingHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	ledger *ledger.Ledger
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config) *VotingHandler {
	store := ledger.NewSQLStore(db)
	return &VotingHandler{
		db:     db,
		cfg:    cfg,
		ledger: ledger.New(store, store, store),
	}
}

// sessionUsername validates the X-Session-Token header and returns the
// username it was issued for, or writes a 401 and returns false.
func (h *VotingHandler) sessionUsername(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := r.Header.Get("X-Session-Token")
	if token == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Session-Token header required")
		return "", false
	}

	username, err := auth.VerifySessionToken(token, h.cfg.SessionSalt)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid or expired session")
		return "", false
	}

	return username, true
}

// ListQuestions handles GET /questions
func (h *VotingHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.Query(`
		SELECT id, title, description, status, created_at
		FROM question
		ORDER BY created_at
	`)
	if err != nil {
		slog.Error("failed to query questions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		var q models.Question
		var desc sql.NullString
		if err := rows.Scan(&q.ID, &q.Title, &desc, &q.Status, &q.CreatedAt); err != nil {
			slog.Error("failed to scan question", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		q.Description = desc.String
		questions = append(questions, q)
	}

	middleware.JSONResponse(w, http.StatusOK, questions)
}

// GetQuestion handles GET /questions/:id
// Returns the question with its options and live vote counts.
func (h *VotingHandler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")
	if questionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question_id is required")
		return
	}

	var q models.Question
	var desc sql.NullString
	err := h.db.QueryRow(`
		SELECT id, title, description, status, created_at
		FROM question
		WHERE id = $1
	`, questionID).Scan(&q.ID, &q.Title, &desc, &q.Status, &q.CreatedAt)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	if err != nil {
		slog.Error("failed to query question", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	q.Description = desc.String

	options, err := h.queryOptions(questionID)
	if err != nil {
		slog.Error("failed to query options", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.QuestionWithOptions{
		Question: q,
		Options:  options,
	})
}

// CastVote handles POST /questions/:id/votes
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")
	if questionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question_id is required")
		return
	}

	username, ok := h.sessionUsername(w, r)
	if !ok {
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.OptionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "option_id is required")
		return
	}

	// Closed questions reject votes before the ledger is involved
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
		middleware.ErrorResponse(w, http.StatusConflict, "Question is not open for voting")
		return
	}

	// Hashed for privacy; the anomaly heuristic only needs equality
	clientIP := middleware.GetClientIP(r)
	ipHash := auth.HashIP(clientIP, h.cfg.AdminKeySalt)

	result, err := h.ledger.CastVote(r.Context(), ledger.CastRequest{
		Username:          username,
		QuestionID:        questionID,
		OptionID:          req.OptionID,
		SourceAddress:     ipHash,
		ClientFingerprint: r.UserAgent(),
	})
	if err != nil {
		slog.Error("vote cast failed", "username", username, "question_id", questionID, "error", err)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Voting is temporarily unavailable, please retry")
		return
	}

	switch result.Outcome {
	case ledger.Success:
		slog.Info("vote cast", "username", username, "question_id", questionID, "option_id", req.OptionID)
		middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
			Message: "Vote recorded",
			Tally:   result.Tally,
		})
	case ledger.AlreadyVoted:
		middleware.ErrorResponse(w, http.StatusConflict, "You have already voted on this question")
	case ledger.InvalidOption:
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid option for this question")
	case ledger.VoterNotFound:
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unknown voter")
	default:
		slog.Error("unexpected cast outcome", "outcome", result.Outcome)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast vote")
	}
}

// GetResults handles GET /questions/:id/results
// Live tallies are always visible.
func (h *VotingHandler) GetResults(w http.ResponseWriter, r *http.Request) {
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

	options, err := h.queryOptions(questionID)
	if err != nil {
		slog.Error("failed to query tally", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	counts := make([]models.OptionCount, 0, len(options))
	for _, opt := range options {
		counts = append(counts, models.OptionCount{
			OptionID:    opt.ID,
			DisplayName: opt.DisplayName,
			VoteCount:   opt.VoteCount,
		})
	}

	middleware.JSONResponse(w, http.StatusOK, counts)
}

// GetMyVote handles GET /questions/:id/my-vote
func (h *VotingHandler) GetMyVote(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("id")
	if questionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "question_id is required")
		return
	}

	username, ok := h.sessionUsername(w, r)
	if !ok {
		return
	}

	resp := models.MyVoteResponse{QuestionID: questionID}

	err := h.db.QueryRow(`
		SELECT v.option_id, v.cast_at
		FROM vote v
		JOIN voter vr ON v.voter_id = vr.id
		WHERE vr.username = $1 AND v.question_id = $2
	`, username, questionID).Scan(&resp.OptionID, &resp.CastAt)

	if err != nil && err != sql.ErrNoRows {
		slog.Error("failed to query vote", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	resp.Voted = err == nil

	middleware.JSONResponse(w, http.StatusOK, resp)
}

func (h *VotingHandler) queryOptions(questionID string) ([]models.Option, error) {
	rows, err := h.db.Query(`
		SELECT id, question_id, display_name, description, vote_count
		FROM option
		WHERE question_id = $1
		ORDER BY id
	`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	options := []models.Option{}
	for rows.Next() {
		var opt models.Option
		var desc sql.NullString
		if err := rows.Scan(&opt.ID, &opt.QuestionID, &opt.DisplayName, &desc, &opt.VoteCount); err != nil {
			return nil, err
		}
		opt.Description = desc.String
		options = append(options, opt)
	}

	return options, rows.Err()
}
