// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/Him70043/Online-Voting-System-sub000/models"
)

// SQLStore implements IdentityStore, TallyStore, and AuditSink over one
// database connection. The vote table's composite primary key is the
// uniqueness constraint TrySetVoted relies on.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// FindVoter implements IdentityStore.
func (s *SQLStore) FindVoter(ctx context.Context, username string) (*models.Voter, error) {
	var v models.Voter
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, role, active, created_at
		FROM voter
		WHERE username = $1
	`, username).Scan(&v.ID, &v.Username, &v.PasswordHash, &v.Role, &v.Active, &v.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrVoterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query voter: %w", err)
	}

	return &v, nil
}

// GetVoterStatus implements IdentityStore.
func (s *SQLStore) GetVoterStatus(ctx context.Context, voterID, questionID string) (Status, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM vote
			WHERE voter_id = $1 AND question_id = $2
		)
	`, voterID, questionID).Scan(&exists)

	if err != nil {
		return NotVoted, fmt.Errorf("failed to query vote status: %w", err)
	}

	if exists {
		return Voted, nil
	}
	return NotVoted, nil
}

// ValidOption implements TallyStore.
func (s *SQLStore) ValidOption(ctx context.Context, questionID, optionID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM option
			WHERE id = $1 AND question_id = $2
		)
	`, optionID, questionID).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("failed to validate option: %w", err)
	}

	return exists, nil
}

// TrySetVoted implements TallyStore. The vote-row insert and the counter
// increment run in one transaction: a primary-key conflict on the insert
// aborts before the increment, and an increment failure rolls the insert
// back, so the two can never diverge.
func (s *SQLStore) TrySetVoted(ctx context.Context, voterID, questionID, optionID string, castAt time.Time) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO vote (voter_id, question_id, option_id, cast_at)
		VALUES ($1, $2, $3, $4)
	`, voterID, questionID, optionID, castAt)

	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert vote: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE option SET vote_count = vote_count + 1 WHERE id = $1
	`, optionID)
	if err != nil {
		return false, fmt.Errorf("failed to increment vote count: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected != 1 {
		return false, fmt.Errorf("vote count increment touched %d rows for option %s", affected, optionID)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to commit vote: %w", err)
	}

	return true, nil
}

// GetOptionSnapshot implements TallyStore.
func (s *SQLStore) GetOptionSnapshot(ctx context.Context, questionID string) ([]models.OptionCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, display_name, vote_count
		FROM option
		WHERE question_id = $1
		ORDER BY id
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tally: %w", err)
	}
	defer rows.Close()

	counts := []models.OptionCount{}
	for rows.Next() {
		var c models.OptionCount
		if err := rows.Scan(&c.OptionID, &c.DisplayName, &c.VoteCount); err != nil {
			return nil, fmt.Errorf("failed to scan tally row: %w", err)
		}
		counts = append(counts, c)
	}

	return counts, rows.Err()
}

// Append implements AuditSink.
func (s *SQLStore) Append(ctx context.Context, entry models.AuditEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_entry
			(id, username, question_id, submitted_at, source_address,
			 client_fingerprint, anomaly_score, status, outcome)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, entry.ID, entry.Username, entry.QuestionID, entry.SubmittedAt,
		entry.SourceAddress, entry.ClientFingerprint, entry.AnomalyScore,
		entry.Status, entry.Outcome)

	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// CountFromSource implements AuditSink.
func (s *SQLStore) CountFromSource(ctx context.Context, sourceAddress string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM audit_entry
		WHERE source_address = $1 AND submitted_at > $2
	`, sourceAddress, since).Scan(&count)

	if err != nil {
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	return count, nil
}

// isUniqueViolation recognizes duplicate-key failures from both supported
// drivers: lib/pq reports SQLSTATE 23505, modernc.org/sqlite only a message.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
