// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Him70043/Online-Voting-System-sub000/models"
)

// Outcome classifies the result of a cast attempt. Expected rejections are
// outcomes, not errors; only storage trouble surfaces as an error.
type Outcome int

const (
	Success Outcome = iota
	AlreadyVoted
	InvalidOption
	VoterNotFound
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case AlreadyVoted:
		return "already_voted"
	case InvalidOption:
		return "invalid_option"
	case VoterNotFound:
		return "voter_not_found"
	}
	return "unknown"
}

// CastRequest is one vote submission.
type CastRequest struct {
	Username          string
	QuestionID        string
	OptionID          string
	SourceAddress     string
	ClientFingerprint string
}

// Result is the outcome of a cast attempt. Tally is populated on Success.
type Result struct {
	Outcome Outcome
	Tally   []models.OptionCount
	Entry   *models.AuditEntry
}

// Ledger applies vote submissions with an at-most-once guarantee per
// (voter, question). Atomicity of the paired choice-record and counter
// increment is delegated to the TallyStore; the ledger holds no mutable
// state of its own, so one instance is safe for concurrent use.
type Ledger struct {
	identity IdentityStore
	tally    TallyStore
	audit    AuditSink
	now      func() time.Time
}

// New creates a Ledger over the given collaborator stores.
func New(identity IdentityStore, tally TallyStore, audit AuditSink) *Ledger {
	return &Ledger{
		identity: identity,
		tally:    tally,
		audit:    audit,
		now:      time.Now,
	}
}

// CastVote validates the submission, applies it exactly once, and records
// an audit entry for the attempt. Expected rejections come back in
// Result.Outcome; a non-nil error means storage failed and nothing partial
// is observable, so the whole call is safe to retry.
func (l *Ledger) CastVote(ctx context.Context, req CastRequest) (*Result, error) {
	voter, err := l.identity.FindVoter(ctx, req.Username)
	if errors.Is(err, ErrVoterNotFound) {
		return &Result{Outcome: VoterNotFound}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("voter lookup: %w", err)
	}
	if !voter.Active {
		return &Result{Outcome: VoterNotFound}, nil
	}

	// Advisory pre-check. A repeat attempt caught here is recorded for
	// forensic visibility; the authoritative check happens again inside
	// TrySetVoted at commit time.
	status, err := l.identity.GetVoterStatus(ctx, voter.ID, req.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("status lookup: %w", err)
	}
	if status == Voted {
		entry := l.recordAttempt(ctx, req, AlreadyVoted)
		return &Result{Outcome: AlreadyVoted, Entry: entry}, nil
	}

	valid, err := l.tally.ValidOption(ctx, req.QuestionID, req.OptionID)
	if err != nil {
		return nil, fmt.Errorf("option validation: %w", err)
	}
	if !valid {
		entry := l.recordAttempt(ctx, req, InvalidOption)
		return &Result{Outcome: InvalidOption, Entry: entry}, nil
	}

	applied, err := l.tally.TrySetVoted(ctx, voter.ID, req.QuestionID, req.OptionID, l.now())
	if err != nil {
		return nil, fmt.Errorf("vote transition: %w", err)
	}
	if !applied {
		// Lost the race to a concurrent submission for the same pair.
		entry := l.recordAttempt(ctx, req, AlreadyVoted)
		return &Result{Outcome: AlreadyVoted, Entry: entry}, nil
	}

	entry := l.recordAttempt(ctx, req, Success)

	snapshot, err := l.tally.GetOptionSnapshot(ctx, req.QuestionID)
	if err != nil {
		// The vote committed; a failed snapshot read must not make the
		// caller believe the cast failed and retry into AlreadyVoted.
		slog.Error("tally snapshot failed after committed vote",
			"question_id", req.QuestionID, "error", err)
		snapshot = nil
	}

	return &Result{Outcome: Success, Tally: snapshot, Entry: entry}, nil
}

// recordAttempt computes the anomaly score for the submitter's recent
// history and appends an audit entry. An audit write failure is logged to
// the operational log and never propagated: a committed vote must not be
// reported as failed because its audit entry could not be written.
func (l *Ledger) recordAttempt(ctx context.Context, req CastRequest, outcome Outcome) *models.AuditEntry {
	now := l.now()

	attempts := 1
	prior, err := l.audit.CountFromSource(ctx, req.SourceAddress, now.Add(-AnomalyWindow))
	if err != nil {
		slog.Error("anomaly window count failed", "source", req.SourceAddress, "error", err)
	} else {
		attempts = prior + 1
	}

	entry := models.AuditEntry{
		ID:                uuid.NewString(),
		Username:          req.Username,
		QuestionID:        req.QuestionID,
		SubmittedAt:       now,
		SourceAddress:     req.SourceAddress,
		ClientFingerprint: req.ClientFingerprint,
		AnomalyScore:      anomalyScore(attempts),
		Status:            models.AuditNormal,
		Outcome:           outcome.String(),
	}
	if anomalyFlagged(attempts) {
		entry.Status = models.AuditFlagged
	}

	if err := l.audit.Append(ctx, entry); err != nil {
		slog.Error("audit write failed",
			"username", req.Username,
			"question_id", req.QuestionID,
			"outcome", outcome.String(),
			"error", err,
		)
		return nil
	}

	return &entry
}
