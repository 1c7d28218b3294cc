// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import "time"

// Anomaly heuristic parameters. The score is a review signal only; it never
// blocks a vote.
const (
	// AnomalyWindow is the trailing window over which submissions from the
	// same source address are counted.
	AnomalyWindow = 15 * time.Minute

	// AnomalyThreshold is the submission count above which an entry is
	// marked FLAGGED.
	AnomalyThreshold = 3
)

// anomalyScore maps an attempt count (including the current attempt) to
// [0,1]. Monotone non-decreasing: 1 attempt scores low, 2*threshold or more
// saturates at 1.
func anomalyScore(attempts int) float64 {
	if attempts <= 0 {
		return 0
	}
	score := float64(attempts) / float64(2*AnomalyThreshold)
	if score > 1 {
		return 1
	}
	return score
}

// anomalyFlagged reports whether the attempt count exceeds the threshold.
func anomalyFlagged(attempts int) bool {
	return attempts > AnomalyThreshold
}
