// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Him70043/Online-Voting-System-sub000/models"
	"github.com/Him70043/Online-Voting-System-sub000/testutil"
)

// TestConcurrentCasts_SamePair races many submissions for one
// (voter, question) pair. Exactly one may win; the counter moves by
// exactly one regardless of interleaving.
func TestConcurrentCasts_SamePair(t *testing.T) {
	l, conn := setupLedger(t)

	testutil.CreateTestVoter(t, conn, "alice", "password123")
	questionID := testutil.CreateTestQuestion(t, conn, "Favorite language?", models.StatusOpen)
	javaID := testutil.AddTestOption(t, conn, questionID, "JAVA")
	pythonID := testutil.AddTestOption(t, conn, questionID, "PYTHON")

	const workers = 10
	options := []string{javaID, pythonID}

	var successes, rejections, failures atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			result, err := l.CastVote(context.Background(), castRequest("alice", questionID, options[n%2]))
			if err != nil {
				failures.Add(1)
				return
			}
			switch result.Outcome {
			case Success:
				successes.Add(1)
			case AlreadyVoted:
				rejections.Add(1)
			default:
				failures.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if failures.Load() != 0 {
		t.Fatalf("%d casts failed outright", failures.Load())
	}
	if successes.Load() != 1 {
		t.Errorf("successes = %d, want exactly 1", successes.Load())
	}
	if rejections.Load() != workers-1 {
		t.Errorf("rejections = %d, want %d", rejections.Load(), workers-1)
	}

	total := testutil.OptionCount(t, conn, javaID) + testutil.OptionCount(t, conn, pythonID)
	if total != 1 {
		t.Errorf("counter sum = %d after the race, want 1", total)
	}

	var voteRows int64
	if err := conn.QueryRow(`SELECT COUNT(*) FROM vote WHERE question_id = $1`, questionID).Scan(&voteRows); err != nil {
		t.Fatalf("failed to count vote rows: %v", err)
	}
	if voteRows != 1 {
		t.Errorf("vote rows = %d after the race, want 1", voteRows)
	}
}

// TestConcurrentCasts_DistinctVoters races submissions from different
// voters on one question; every cast must land.
func TestConcurrentCasts_DistinctVoters(t *testing.T) {
	l, conn := setupLedger(t)

	questionID := testutil.CreateTestQuestion(t, conn, "Favorite language?", models.StatusOpen)
	javaID := testutil.AddTestOption(t, conn, questionID, "JAVA")
	pythonID := testutil.AddTestOption(t, conn, questionID, "PYTHON")

	voters := []string{"alice", "bob", "carol", "dave", "erin", "frank"}
	for _, name := range voters {
		testutil.CreateTestVoter(t, conn, name, "password123")
	}
	options := []string{javaID, pythonID}

	var successes atomic.Int32
	var wg sync.WaitGroup

	for i, name := range voters {
		wg.Add(1)
		go func(n int, username string) {
			defer wg.Done()
			result, err := l.CastVote(context.Background(), castRequest(username, questionID, options[n%2]))
			if err == nil && result.Outcome == Success {
				successes.Add(1)
			}
		}(i, name)
	}
	wg.Wait()

	if int(successes.Load()) != len(voters) {
		t.Errorf("successes = %d, want %d", successes.Load(), len(voters))
	}

	total := testutil.OptionCount(t, conn, javaID) + testutil.OptionCount(t, conn, pythonID)
	if total != int64(len(voters)) {
		t.Errorf("counter sum = %d, want %d", total, len(voters))
	}
}
