// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger owns the vote-casting transition: it applies each vote at
most once per (voter, question), keeps option tallies consistent with
recorded choices, and writes an audit entry for every attempt.

# Casting a Vote

	store := ledger.NewSQLStore(conn)
	l := ledger.New(store, store, store)

	result, err := l.CastVote(ctx, ledger.CastRequest{
		Username:      "alice",
		QuestionID:    questionID,
		OptionID:      optionID,
		SourceAddress: clientIP,
	})

A non-nil error means storage failed with nothing partial observable; the
whole call is safe to retry. Expected rejections are outcomes:

	Success       vote committed, Result.Tally holds the fresh snapshot
	AlreadyVoted  idempotent rejection; the prior choice stands
	InvalidOption option does not belong to the question
	VoterNotFound unknown or deactivated username

# Exactly-Once Guarantee

The choice record and the counter increment are one atomic unit inside
TallyStore.TrySetVoted, and the uniqueness decision is made by the store at
commit time (the vote table's composite primary key), not by a preliminary
read. Concurrent submissions for the same (voter, question) therefore
serialize: exactly one Success, the rest AlreadyVoted.

# Anomaly Scoring

Every audited attempt gets a score in [0,1] from the count of submissions
seen from the same source address within AnomalyWindow. Counts above
AnomalyThreshold mark the entry FLAGGED. The score is a signal for human
review; it never blocks a vote - only the idempotency check can do that.

# Audit Failures

Audit writes are best-effort from the caller's perspective: a failed write
is reported to the operational log (slog) and never turns a committed vote
into a reported failure.
*/
package ledger
