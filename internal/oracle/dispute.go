package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"matchoracle/internal/models"
	"matchoracle/internal/repository"
)

// Dispute lodges a challenge against a pending result. The attached stake
// must equal exactly twice the game's registration stake.
func (e *Engine) Dispute(ctx context.Context, matchID, reason string, stake decimal.Decimal, caller string) (*models.Result, error) {
	if caller == "" {
		return nil, fmt.Errorf("%w: caller account is required", ErrUnauthorized)
	}
	unlock := e.locks.Lock(matchID)
	defer unlock()

	result, err := e.Store.GetResultByMatchID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("%w: result for match %s", ErrNotFound, matchID)
	}

	game, err := e.game(ctx, result.GameContract)
	if err != nil {
		return nil, err
	}
	required := requiredDisputeStake(game)
	if !stake.Equal(required) {
		return nil, fmt.Errorf("%w: dispute stake must be exactly %s, got %s", ErrValueMismatch, required, stake)
	}

	if err := applyDispute(result, e.now(), caller, stake, reason); err != nil {
		return nil, err
	}

	notification := e.newNotification(models.EventResultDisputed, matchID, map[string]any{
		"disputer": caller,
		"stake":    stake.String(),
		"reason":   reason,
	})

	err = e.Store.Transact(ctx, func(tx repository.Store) error {
		if err := tx.UpdateResult(ctx, result); err != nil {
			return err
		}
		return tx.CreateNotification(ctx, notification)
	})
	if err != nil {
		return nil, err
	}

	e.publish(notification)
	e.logger().Info("result disputed",
		zap.String("match_id", matchID),
		zap.String("disputer", caller),
		zap.String("stake", stake.String()),
	)
	return result, nil
}

// Finalize closes an undisputed result once the dispute window has elapsed.
// Callable by anyone; awards the small unchallenged reputation increment.
func (e *Engine) Finalize(ctx context.Context, matchID string) (*models.Result, error) {
	unlock := e.locks.Lock(matchID)
	defer unlock()

	result, err := e.Store.GetResultByMatchID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("%w: result for match %s", ErrNotFound, matchID)
	}

	if err := applyFinalize(result, e.now()); err != nil {
		return nil, err
	}

	game, err := e.game(ctx, result.GameContract)
	if err != nil {
		return nil, err
	}
	newScore := clampReputation(game.Reputation + ReputationUnchallenged)
	if err := e.Directory.SetReputation(ctx, game.ID, newScore); err != nil {
		return nil, fmt.Errorf("directory set reputation: %w", err)
	}

	notification := e.newNotification(models.EventResultFinalized, matchID, map[string]any{
		"result_hash":  result.ResultHash,
		"finalized_at": e.now().Format(time.RFC3339),
	})

	err = e.Store.Transact(ctx, func(tx repository.Store) error {
		if err := tx.UpdateResult(ctx, result); err != nil {
			return err
		}
		return tx.CreateNotification(ctx, notification)
	})
	if err != nil {
		return nil, err
	}

	e.publish(notification)
	e.logger().Info("result finalized",
		zap.String("match_id", matchID),
		zap.Int("reputation", newScore),
	)
	return result, nil
}

// ResolutionOutcome reports who was credited what by a resolution.
type ResolutionOutcome struct {
	DisputeValid bool            `json:"dispute_valid"`
	Beneficiary  string          `json:"beneficiary"`
	Amount       decimal.Decimal `json:"amount"`
	Reputation   int             `json:"reputation"`
}

// Resolve adjudicates a disputed result. Restricted to resolver accounts.
// Exactly one of two outcomes fires: dispute upheld credits the disputer with
// stake plus half the registration stake and slashes the game; dispute
// rejected returns the full stake to the submitter. Both finalize the result.
func (e *Engine) Resolve(ctx context.Context, matchID string, disputeValid bool, caller string) (*models.Result, *ResolutionOutcome, error) {
	if e.Auth == nil || !e.Auth.CanResolve(caller) {
		return nil, nil, fmt.Errorf("%w: %s may not resolve disputes", ErrUnauthorized, caller)
	}
	unlock := e.locks.Lock(matchID)
	defer unlock()

	result, err := e.Store.GetResultByMatchID(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	if result == nil {
		return nil, nil, fmt.Errorf("%w: result for match %s", ErrNotFound, matchID)
	}
	if err := applyResolution(result, disputeValid); err != nil {
		return nil, nil, err
	}
	if result.Disputer == nil || result.DisputeStake == nil {
		return nil, nil, fmt.Errorf("%w: disputed result is missing dispute record", ErrStateViolation)
	}

	game, err := e.game(ctx, result.GameContract)
	if err != nil {
		return nil, nil, err
	}

	stake := *result.DisputeStake
	half := game.RegistrationStake.Div(decimal.NewFromInt(2))

	var outcome ResolutionOutcome
	if disputeValid {
		reason := ""
		if result.DisputeReason != nil {
			reason = *result.DisputeReason
		}
		if err := e.Directory.SlashStake(ctx, game.ID, half, reason); err != nil {
			return nil, nil, fmt.Errorf("directory slash stake: %w", err)
		}
		outcome = ResolutionOutcome{
			DisputeValid: true,
			Beneficiary:  *result.Disputer,
			Amount:       stake.Add(half),
			Reputation:   clampReputation(game.Reputation - ReputationSlashPenalty),
		}
	} else {
		outcome = ResolutionOutcome{
			DisputeValid: false,
			Beneficiary:  result.Submitter,
			Amount:       stake,
			Reputation:   clampReputation(game.Reputation + ReputationDisputeSurvived),
		}
	}
	if err := e.Directory.SetReputation(ctx, game.ID, outcome.Reputation); err != nil {
		return nil, nil, fmt.Errorf("directory set reputation: %w", err)
	}

	notification := e.newNotification(models.EventDisputeResolved, matchID, map[string]any{
		"dispute_valid": outcome.DisputeValid,
		"beneficiary":   outcome.Beneficiary,
		"amount":        outcome.Amount.String(),
	})

	err = e.Store.Transact(ctx, func(tx repository.Store) error {
		if err := tx.CreditReward(ctx, outcome.Beneficiary, outcome.Amount); err != nil {
			return err
		}
		if err := tx.UpdateResult(ctx, result); err != nil {
			return err
		}
		return tx.CreateNotification(ctx, notification)
	})
	if err != nil {
		return nil, nil, err
	}

	e.publish(notification)
	e.logger().Info("dispute resolved",
		zap.String("match_id", matchID),
		zap.Bool("dispute_valid", outcome.DisputeValid),
		zap.String("beneficiary", outcome.Beneficiary),
		zap.String("amount", outcome.Amount.String()),
	)
	return result, &outcome, nil
}

func (e *Engine) game(ctx context.Context, gameID string) (*Game, error) {
	game, err := e.Directory.GetGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("directory get game: %w", err)
	}
	if game == nil {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}
	return game, nil
}
