package oracle

import (
	"context"
	"fmt"

	"matchoracle/internal/models"
	"matchoracle/internal/repository"
)

// LegacyResult is the backward-compatible simplified view. Structured-schema
// results carry an empty Text field.
type LegacyResult struct {
	Text      string `json:"result"`
	Hash      string `json:"result_hash"`
	Finalized bool   `json:"is_finalized"`
}

// ResultPayload is the opaque custom payload plus its schema reference.
type ResultPayload struct {
	SchemaID   *string `json:"schema_id"`
	CustomData []byte  `json:"custom_data"`
}

// Outcome is the participants/scores/winner view of a result.
type Outcome struct {
	Participants []models.Participant `json:"participants"`
	WinnerIndex  int16                `json:"winner_index"`
}

func (e *Engine) Result(ctx context.Context, matchID string) (*models.Result, error) {
	result, err := e.Store.GetResultByMatchID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("%w: result for match %s", ErrNotFound, matchID)
	}
	return result, nil
}

func (e *Engine) Legacy(ctx context.Context, matchID string) (*LegacyResult, error) {
	result, err := e.Result(ctx, matchID)
	if err != nil {
		return nil, err
	}
	out := &LegacyResult{
		Hash:      result.ResultHash,
		Finalized: result.IsFinalized,
	}
	if result.SchemaID == nil {
		out.Text = string(result.CustomData)
	}
	return out, nil
}

func (e *Engine) Finalized(ctx context.Context, matchID string) (bool, error) {
	result, err := e.Result(ctx, matchID)
	if err != nil {
		return false, err
	}
	return result.IsFinalized, nil
}

func (e *Engine) Checks(ctx context.Context, matchID string) (*models.ValidationChecks, error) {
	checks, err := e.Store.GetValidationChecksByMatchID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if checks == nil {
		return nil, fmt.Errorf("%w: validation checks for match %s", ErrNotFound, matchID)
	}
	return checks, nil
}

func (e *Engine) Payload(ctx context.Context, matchID string) (*ResultPayload, error) {
	result, err := e.Result(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return &ResultPayload{SchemaID: result.SchemaID, CustomData: result.CustomData}, nil
}

func (e *Engine) ResultOutcome(ctx context.Context, matchID string) (*Outcome, error) {
	result, err := e.Result(ctx, matchID)
	if err != nil {
		return nil, err
	}
	participants, err := result.ParticipantList()
	if err != nil {
		return nil, err
	}
	return &Outcome{Participants: participants, WinnerIndex: result.WinnerIndex}, nil
}

func (e *Engine) CountResults(ctx context.Context) (int64, error) {
	return e.Store.CountResults(ctx, repository.ListResultsParams{})
}

func (e *Engine) ListResults(ctx context.Context, params repository.ListResultsParams) ([]models.Result, int64, error) {
	items, err := e.Store.ListResults(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total, err := e.Store.CountResults(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
