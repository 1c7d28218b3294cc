package models

import "time"

// Question status constants
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Voter role constants
const (
	RoleVoter = "voter"
	RoleAdmin = "admin"
)

// Audit entry status constants
const (
	AuditNormal  = "NORMAL"
	AuditFlagged = "FLAGGED"
)

// Request types

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CastVoteRequest struct {
	OptionID string `json:"option_id"`
}

type CreateQuestionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type AddOptionRequest struct {
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

type PurgeAuditRequest struct {
	OlderThanDays int `json:"older_than_days"`
}

// Response types

type RegisterResponse struct {
	Username string `json:"username"`
}

type LoginResponse struct {
	SessionToken string `json:"session_token"`
}

type CastVoteResponse struct {
	Message string        `json:"message"`
	Tally   []OptionCount `json:"tally"`
}

type MyVoteResponse struct {
	QuestionID string     `json:"question_id"`
	OptionID   *string    `json:"option_id,omitempty"`
	CastAt     *time.Time `json:"cast_at,omitempty"`
	Voted      bool       `json:"voted"`
}

type CreateQuestionResponse struct {
	QuestionID string `json:"question_id"`
}

type AddOptionResponse struct {
	OptionID string `json:"option_id"`
}

type ResetTalliesResponse struct {
	VotesDeleted int64 `json:"votes_deleted"`
}

type PurgeAuditResponse struct {
	EntriesDeleted int64 `json:"entries_deleted"`
}

// Domain types

type Voter struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	// PasswordHash never leaves the database layer as JSON
	PasswordHash string `json:"-"`
}

type Question struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type Option struct {
	ID          string `json:"id"`
	QuestionID  string `json:"question_id"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	VoteCount   int64  `json:"vote_count"`
}

type QuestionWithOptions struct {
	Question Question `json:"question"`
	Options  []Option `json:"options"`
}

// OptionCount is one row of a tally snapshot.
type OptionCount struct {
	OptionID    string `json:"option_id"`
	DisplayName string `json:"display_name"`
	VoteCount   int64  `json:"vote_count"`
}

type AuditEntry struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	QuestionID        string    `json:"question_id"`
	SubmittedAt       time.Time `json:"submitted_at"`
	SourceAddress     string    `json:"source_address"`
	ClientFingerprint string    `json:"client_fingerprint,omitempty"`
	AnomalyScore      float64   `json:"anomaly_score"`
	Status            string    `json:"status"`
	Outcome           string    `json:"outcome"`
	// Age is filled in for admin listings only ("3 minutes ago")
	Age string `json:"age,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
