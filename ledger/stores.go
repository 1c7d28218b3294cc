// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/Him70043/Online-Voting-System-sub000/models"
)

// ErrVoterNotFound is returned by IdentityStore lookups for unknown usernames.
var ErrVoterNotFound = errors.New("voter not found")

// Status is a voter's state for one question.
type Status int

const (
	NotVoted Status = iota
	Voted
)

// IdentityStore resolves voters and their per-question status.
type IdentityStore interface {
	// FindVoter returns the voter record for a username, or ErrVoterNotFound.
	FindVoter(ctx context.Context, username string) (*models.Voter, error)

	// GetVoterStatus reports whether the voter has voted on the question.
	GetVoterStatus(ctx context.Context, voterID, questionID string) (Status, error)
}

// TallyStore owns option validation, the atomic vote transition, and
// tally snapshots.
type TallyStore interface {
	// ValidOption reports whether optionID belongs to questionID.
	ValidOption(ctx context.Context, questionID, optionID string) (bool, error)

	// TrySetVoted records the voter's choice and increments the option's
	// vote count as one atomic unit. Returns false without mutating
	// anything if a vote for (voterID, questionID) already exists. The
	// uniqueness decision is made by the store at commit time, not by a
	// prior read, so concurrent callers serialize correctly.
	TrySetVoted(ctx context.Context, voterID, questionID, optionID string, castAt time.Time) (bool, error)

	// GetOptionSnapshot returns the current tally for every option under
	// the question.
	GetOptionSnapshot(ctx context.Context, questionID string) ([]models.OptionCount, error)
}

// AuditSink appends immutable submission records and answers the
// trailing-window queries the anomaly heuristic needs.
type AuditSink interface {
	Append(ctx context.Context, entry models.AuditEntry) error

	// CountFromSource counts audit entries from a source address since the
	// given time (successful and rejected attempts alike).
	CountFromSource(ctx context.Context, sourceAddress string, since time.Time) (int, error)
}
