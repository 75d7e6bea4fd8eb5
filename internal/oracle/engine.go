package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"matchoracle/internal/models"
	"matchoracle/internal/repository"
)

// EventSink receives notifications after their transaction commits. The
// websocket hub implements it; nil disables live publishing (the outbox row
// is written regardless).
type EventSink interface {
	Publish(n models.Notification)
}

// Engine is the result lifecycle and dispute-resolution core. All mutating
// entry points serialize per match key and commit through a single store
// transaction; collaborator calls complete before that transaction commits,
// so a collaborator failure aborts with no state change.
type Engine struct {
	Store     repository.Store
	Directory Directory
	Schemas   SchemaRegistry
	Auth      Authorizer
	Events    EventSink
	Logger    *zap.Logger

	// Now overrides the clock in tests.
	Now func() time.Time

	locks keyedMutex
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return zap.NewNop()
}

// SubmitV2 admits a structured result. On critical failure nothing is
// persisted; the computed checks are still returned for diagnostics.
func (e *Engine) SubmitV2(ctx context.Context, sub Submission) (*models.Result, *models.ValidationChecks, error) {
	if sub.MatchID == "" {
		return nil, nil, fmt.Errorf("%w: match id is required", ErrInvalidShape)
	}
	if sub.Submitter == "" {
		return nil, nil, fmt.Errorf("%w: submitter account is required", ErrUnauthorized)
	}
	unlock := e.locks.Lock(sub.MatchID)
	defer unlock()

	existing, err := e.Store.GetResultByMatchID(ctx, sub.MatchID)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, fmt.Errorf("%w: match %s", ErrAlreadyExists, sub.MatchID)
	}

	now := e.now()
	match, game, checks, err := e.admit(ctx, sub.MatchID, sub.GameContract, sub.Submitter, now)
	if err != nil {
		return nil, checks, err
	}

	if err := validateShape(sub); err != nil {
		return nil, checks, err
	}
	checks.ParticipantsValid = true

	if sub.SchemaID != nil {
		if err := e.validateSchema(ctx, sub.GameContract, *sub.SchemaID, sub.CustomData); err != nil {
			return nil, checks, err
		}
	}
	checks.SchemaValid = true

	checks.TimingValid = !now.Before(match.ScheduledAt) && sub.DurationSec > 0
	checks.DataIntegrityValid = auditDataIntegrity(sub)

	participantsJSON, err := models.EncodeParticipants(sub.Participants)
	if err != nil {
		return nil, checks, err
	}

	result := &models.Result{
		MatchID:         sub.MatchID,
		GameContract:    sub.GameContract,
		Submitter:       sub.Submitter,
		Status:          models.StatusCompleted,
		Participants:    participantsJSON,
		WinnerIndex:     sub.WinnerIndex,
		SchemaID:        sub.SchemaID,
		CustomData:      sub.CustomData,
		DurationSec:     sub.DurationSec,
		SubmittedAt:     now,
		DisputeDeadline: now.Add(DisputeWindow),
	}
	result.ResultHash = ComputeResultHash(sub.MatchID, sub.GameContract, sub.Submitter,
		sub.Participants, sub.WinnerIndex, sub.DurationSec, sub.SchemaID, sub.CustomData, now)

	if err := e.Directory.SetMatchStatus(ctx, sub.MatchID, MatchCompleted); err != nil {
		return nil, checks, fmt.Errorf("directory set match status: %w", err)
	}

	notifications := []*models.Notification{
		e.newNotification(models.EventResultSubmitted, sub.MatchID, map[string]any{
			"game_contract":    sub.GameContract,
			"submitter":        sub.Submitter,
			"schema_id":        sub.SchemaID,
			"result_hash":      result.ResultHash,
			"dispute_deadline": result.DisputeDeadline.Format(time.RFC3339),
		}),
	}
	if sub.SchemaID != nil {
		notifications = append(notifications, e.newNotification(models.EventSchemaValidated, sub.MatchID, map[string]any{
			"schema_id": *sub.SchemaID,
			"valid":     true,
		}))
	}

	err = e.Store.Transact(ctx, func(tx repository.Store) error {
		if err := tx.CreateResult(ctx, result); err != nil {
			return err
		}
		if err := tx.CreateValidationChecks(ctx, checks); err != nil {
			return err
		}
		for _, n := range notifications {
			if err := tx.CreateNotification(ctx, n); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, checks, err
	}

	e.publish(notifications...)
	e.logger().Info("result submitted",
		zap.String("match_id", sub.MatchID),
		zap.String("game", game.ID),
		zap.String("submitter", sub.Submitter),
		zap.Time("dispute_deadline", result.DisputeDeadline),
	)
	return result, checks, nil
}

// SubmitLegacy admits a free-text result. Same match, authorization and
// uniqueness gate as SubmitV2; participant and schema validation are skipped
// and recorded as vacuously passed.
func (e *Engine) SubmitLegacy(ctx context.Context, matchID, text, submitter string) (*models.Result, error) {
	if matchID == "" {
		return nil, fmt.Errorf("%w: match id is required", ErrInvalidShape)
	}
	if submitter == "" {
		return nil, fmt.Errorf("%w: submitter account is required", ErrUnauthorized)
	}
	unlock := e.locks.Lock(matchID)
	defer unlock()

	existing, err := e.Store.GetResultByMatchID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: match %s", ErrAlreadyExists, matchID)
	}

	now := e.now()
	match, _, checks, err := e.admit(ctx, matchID, "", submitter, now)
	if err != nil {
		return nil, err
	}
	checks.ParticipantsValid = true
	checks.SchemaValid = true
	checks.TimingValid = !now.Before(match.ScheduledAt)
	checks.DataIntegrityValid = len(text) > 0 && len(text) <= MaxCustomDataBytes

	result := &models.Result{
		MatchID:         matchID,
		GameContract:    match.GameID,
		Submitter:       submitter,
		Status:          models.StatusCompleted,
		WinnerIndex:     WinnerNone,
		CustomData:      []byte(text),
		SubmittedAt:     now,
		DisputeDeadline: now.Add(DisputeWindow),
	}
	result.ResultHash = ComputeResultHash(matchID, match.GameID, submitter,
		nil, WinnerNone, 0, nil, result.CustomData, now)

	if err := e.Directory.SetMatchStatus(ctx, matchID, MatchCompleted); err != nil {
		return nil, fmt.Errorf("directory set match status: %w", err)
	}

	notification := e.newNotification(models.EventResultSubmitted, matchID, map[string]any{
		"game_contract":    match.GameID,
		"submitter":        submitter,
		"schema_id":        nil,
		"result_hash":      result.ResultHash,
		"dispute_deadline": result.DisputeDeadline.Format(time.RFC3339),
		"legacy":           true,
	})

	err = e.Store.Transact(ctx, func(tx repository.Store) error {
		if err := tx.CreateResult(ctx, result); err != nil {
			return err
		}
		if err := tx.CreateValidationChecks(ctx, checks); err != nil {
			return err
		}
		return tx.CreateNotification(ctx, notification)
	})
	if err != nil {
		return nil, err
	}

	e.publish(notification)
	e.logger().Warn("legacy result submitted without structured validation",
		zap.String("match_id", matchID),
		zap.String("submitter", submitter),
	)
	return result, nil
}

// admit enforces the match/authorization preconditions shared by both
// submission paths. gameContract may be empty on the legacy path, in which
// case the match's registered game is used.
func (e *Engine) admit(ctx context.Context, matchID, gameContract, submitter string, now time.Time) (*Match, *Game, *models.ValidationChecks, error) {
	checks := &models.ValidationChecks{MatchID: matchID, CreatedAt: now}

	match, err := e.Directory.GetMatch(ctx, matchID)
	if err != nil {
		return nil, nil, checks, fmt.Errorf("directory get match: %w", err)
	}
	if match == nil {
		return nil, nil, checks, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	}
	if match.Status != MatchScheduled && match.Status != MatchInProgress {
		return nil, nil, checks, fmt.Errorf("%w: match %s is %s, not open for results", ErrStateViolation, matchID, match.Status)
	}
	if gameContract != "" && match.GameID != gameContract {
		return nil, nil, checks, fmt.Errorf("%w: match %s does not belong to game %s", ErrUnauthorized, matchID, gameContract)
	}

	game, err := e.Directory.GetGame(ctx, match.GameID)
	if err != nil {
		return nil, nil, checks, fmt.Errorf("directory get game: %w", err)
	}
	if game == nil {
		return nil, nil, checks, fmt.Errorf("%w: game %s", ErrNotFound, match.GameID)
	}
	if !game.Active {
		return nil, nil, checks, fmt.Errorf("%w: game %s is not active", ErrUnauthorized, game.ID)
	}
	if game.Developer != submitter {
		return nil, nil, checks, fmt.Errorf("%w: %s is not the registered developer of game %s", ErrUnauthorized, submitter, game.ID)
	}
	checks.AuthorizationValid = true
	return match, game, checks, nil
}

func (e *Engine) validateSchema(ctx context.Context, gameContract, schemaID string, payload []byte) error {
	active, err := e.Schemas.IsSchemaActive(ctx, schemaID)
	if err != nil {
		return fmt.Errorf("schema registry: %w", err)
	}
	if !active {
		return fmt.Errorf("%w: schema %s is not active", ErrSchemaViolation, schemaID)
	}
	bound, err := e.Schemas.GameSchema(ctx, gameContract)
	if err != nil {
		return fmt.Errorf("schema registry: %w", err)
	}
	if bound != "" && bound != schemaID {
		return fmt.Errorf("%w: game %s is bound to schema %s, got %s", ErrSchemaViolation, gameContract, bound, schemaID)
	}
	if err := e.Schemas.Validate(ctx, schemaID, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	return nil
}

func (e *Engine) publish(notifications ...*models.Notification) {
	if e.Events == nil {
		return
	}
	for _, n := range notifications {
		if n != nil {
			e.Events.Publish(*n)
		}
	}
}

func (e *Engine) newNotification(event, matchID string, payload map[string]any) *models.Notification {
	raw, _ := json.Marshal(payload)
	return &models.Notification{
		ID:        uuid.NewString(),
		EventType: event,
		MatchID:   matchID,
		Payload:   datatypes.JSON(raw),
		CreatedAt: e.now(),
	}
}

// requiredDisputeStake is the exact collateral a disputer must attach.
func requiredDisputeStake(game *Game) decimal.Decimal {
	return game.RegistrationStake.Mul(decimal.NewFromInt(DisputeStakeMultiplier))
}
