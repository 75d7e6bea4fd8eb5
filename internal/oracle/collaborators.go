package oracle

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Match statuses as reported by the directory. A result may only be submitted
// for a scheduled or in-progress match.
const (
	MatchScheduled  = "SCHEDULED"
	MatchInProgress = "IN_PROGRESS"
	MatchCompleted  = "COMPLETED"
	MatchCancelled  = "CANCELLED"
)

// Match is the directory's view of a scheduled contest.
type Match struct {
	ID          string
	GameID      string
	Status      string
	ScheduledAt time.Time
}

// Game is the directory's metadata for a registered game.
type Game struct {
	ID                string
	Developer         string
	Active            bool
	Reputation        int
	RegistrationStake decimal.Decimal
}

// Directory is the Match/Game Directory collaborator. All calls are
// synchronous; a failed call aborts the operation that issued it before any
// oracle state commits.
//
// SlashStake reduces the game's registration stake by amount. The oracle only
// ever instructs the half it credits to the disputer; disposition of any
// remainder is the directory's contract, not decided here.
type Directory interface {
	GetMatch(ctx context.Context, matchID string) (*Match, error)
	GetGame(ctx context.Context, gameID string) (*Game, error)
	SetMatchStatus(ctx context.Context, matchID, status string) error
	SlashStake(ctx context.Context, gameID string, amount decimal.Decimal, reason string) error
	SetReputation(ctx context.Context, gameID string, score int) error
}

// SchemaRegistry validates structured custom payloads against registered
// schemas. The oracle treats payloads as opaque beyond this check.
type SchemaRegistry interface {
	IsSchemaActive(ctx context.Context, schemaID string) (bool, error)
	// GameSchema returns the schema id bound to the game, or "" when unbound.
	GameSchema(ctx context.Context, gameID string) (string, error)
	Validate(ctx context.Context, schemaID string, payload []byte) error
}

// Authorizer decides who may resolve disputes. Injected so alternate
// governance (multisig, voting, external oracle) can replace the default
// account allowlist without touching the resolution algorithm.
type Authorizer interface {
	CanResolve(account string) bool
}

// AccountAuthorizer authorizes a fixed set of resolver accounts.
type AccountAuthorizer struct {
	accounts map[string]struct{}
}

func NewAccountAuthorizer(accounts []string) *AccountAuthorizer {
	set := make(map[string]struct{}, len(accounts))
	for _, a := range accounts {
		if a != "" {
			set[a] = struct{}{}
		}
	}
	return &AccountAuthorizer{accounts: set}
}

func (a *AccountAuthorizer) CanResolve(account string) bool {
	if a == nil {
		return false
	}
	_, ok := a.accounts[account]
	return ok
}
