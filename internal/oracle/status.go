package oracle

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"matchoracle/internal/models"
)

// Phase is the dispute-lifecycle state of a result, derived from the stored
// flags so that an unreachable combination cannot be constructed: a finalized
// result is Finalized no matter what else is set.
type Phase int

const (
	PhasePending Phase = iota
	PhaseDisputed
	PhaseFinalized
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseDisputed:
		return "disputed"
	case PhaseFinalized:
		return "finalized"
	}
	return "unknown"
}

func phaseOf(r *models.Result) Phase {
	if r.IsFinalized {
		return PhaseFinalized
	}
	if r.IsDisputed {
		return PhaseDisputed
	}
	return PhasePending
}

// applyDispute performs the PENDING -> DISPUTED transition in place. The
// stake amount is validated by the caller against the game's registration
// stake; everything time- and state-shaped is enforced here.
func applyDispute(r *models.Result, now time.Time, disputer string, stake decimal.Decimal, reason string) error {
	switch phaseOf(r) {
	case PhaseFinalized:
		return fmt.Errorf("%w: result is finalized", ErrStateViolation)
	case PhaseDisputed:
		return fmt.Errorf("%w: result is already disputed", ErrStateViolation)
	}
	if !now.Before(r.DisputeDeadline) {
		return fmt.Errorf("%w: dispute window closed at %s", ErrStateViolation, r.DisputeDeadline.Format(time.RFC3339))
	}
	if reason == "" {
		return fmt.Errorf("%w: dispute reason is required", ErrInvalidShape)
	}
	r.IsDisputed = true
	r.Status = models.StatusDisputed
	r.Disputer = &disputer
	r.DisputeStake = &stake
	r.DisputeReason = &reason
	return nil
}

// applyFinalize performs the PENDING -> FINALIZED transition in place.
func applyFinalize(r *models.Result, now time.Time) error {
	switch phaseOf(r) {
	case PhaseFinalized:
		return fmt.Errorf("%w: result is already finalized", ErrStateViolation)
	case PhaseDisputed:
		return fmt.Errorf("%w: disputed result must be resolved, not finalized", ErrStateViolation)
	}
	if now.Before(r.DisputeDeadline) {
		return fmt.Errorf("%w: dispute window open until %s", ErrStateViolation, r.DisputeDeadline.Format(time.RFC3339))
	}
	r.IsFinalized = true
	return nil
}

// applyResolution performs the DISPUTED -> FINALIZED transition in place.
// When the dispute is upheld the record stays flagged disputed; when rejected
// the status reverts to COMPLETED. Both branches close the case for good.
func applyResolution(r *models.Result, disputeValid bool) error {
	switch phaseOf(r) {
	case PhaseFinalized:
		return fmt.Errorf("%w: result is already finalized", ErrStateViolation)
	case PhasePending:
		return fmt.Errorf("%w: result is not disputed", ErrStateViolation)
	}
	if !disputeValid {
		r.Status = models.StatusCompleted
	}
	r.IsFinalized = true
	return nil
}
