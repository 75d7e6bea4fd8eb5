package oracle

import "time"

// Protocol constants. These form the external contract of the oracle and are
// deliberately not configurable.
const (
	// DisputeWindow is how long after submission a result may be challenged.
	DisputeWindow = 15 * time.Minute

	// WinnerNone is the winner-index sentinel meaning "no winner / draw".
	WinnerNone int16 = 255

	// MaxParticipants keeps every real index below the sentinel.
	MaxParticipants = 255

	// MaxCustomDataBytes bounds the opaque payload. Oversized payloads are
	// flagged in the data-integrity audit check, not rejected.
	MaxCustomDataBytes = 64 << 10
)

// Reputation domain and adjustments.
const (
	ReputationMin = 0
	ReputationMax = 1000

	// ReputationSlashPenalty is applied when a dispute is upheld.
	ReputationSlashPenalty = 50
	// ReputationDisputeSurvived is awarded when a dispute is rejected.
	ReputationDisputeSurvived = 10
	// ReputationUnchallenged is awarded on finalization without dispute.
	ReputationUnchallenged = 5
)

// DisputeStakeMultiplier: the required dispute stake is this many times the
// game's registration stake.
const DisputeStakeMultiplier = 2

func clampReputation(score int) int {
	if score < ReputationMin {
		return ReputationMin
	}
	if score > ReputationMax {
		return ReputationMax
	}
	return score
}
