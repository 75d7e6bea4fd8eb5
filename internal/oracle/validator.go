package oracle

import (
	"fmt"

	"matchoracle/internal/models"
)

// Submission is a structured result as handed to SubmitV2, participants
// already paired into the unified outcome list.
type Submission struct {
	MatchID      string
	GameContract string
	Participants []models.Participant
	WinnerIndex  int16
	DurationSec  int64
	SchemaID     *string
	CustomData   []byte
	Submitter    string
}

// PairOutcome zips the wire-level parallel participant/score arrays into the
// unified list, enforcing the length-pairing invariant.
func PairOutcome(accounts []string, scores []int64) ([]models.Participant, error) {
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: participants are empty", ErrInvalidShape)
	}
	if len(accounts) != len(scores) {
		return nil, fmt.Errorf("%w: %d participants paired with %d scores", ErrInvalidShape, len(accounts), len(scores))
	}
	out := make([]models.Participant, 0, len(accounts))
	for i, account := range accounts {
		out = append(out, models.Participant{Account: account, Score: scores[i]})
	}
	return out, nil
}

// validateShape enforces the participant-shape invariants: non-empty,
// bounded, distinct accounts, winner index sentinel-or-valid.
func validateShape(sub Submission) error {
	if len(sub.Participants) == 0 {
		return fmt.Errorf("%w: participants are empty", ErrInvalidShape)
	}
	if len(sub.Participants) > MaxParticipants {
		return fmt.Errorf("%w: %d participants exceeds maximum %d", ErrInvalidShape, len(sub.Participants), MaxParticipants)
	}
	seen := make(map[string]struct{}, len(sub.Participants))
	for _, p := range sub.Participants {
		if p.Account == "" {
			return fmt.Errorf("%w: participant account is empty", ErrInvalidShape)
		}
		if _, dup := seen[p.Account]; dup {
			return fmt.Errorf("%w: duplicate participant %s", ErrInvalidShape, p.Account)
		}
		seen[p.Account] = struct{}{}
	}
	if sub.WinnerIndex != WinnerNone {
		if sub.WinnerIndex < 0 || int(sub.WinnerIndex) >= len(sub.Participants) {
			return fmt.Errorf("%w: winner index %d out of range for %d participants", ErrInvalidShape, sub.WinnerIndex, len(sub.Participants))
		}
	}
	return nil
}

// auditDataIntegrity is a diagnostic check, recorded but never fatal.
func auditDataIntegrity(sub Submission) bool {
	for _, p := range sub.Participants {
		if p.Score < 0 {
			return false
		}
	}
	return len(sub.CustomData) <= MaxCustomDataBytes
}
