package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"matchoracle/internal/models"
)

type ListResultsParams struct {
	Limit     int
	Offset    int
	Status    *string
	Finalized *bool
	Disputed  *bool
	OrderBy   string
	Asc       *bool
}

// Store is the persistence surface the oracle engine depends on. The gorm
// implementation backs production; the memory implementation backs tests.
// Transact runs fn against a transaction-scoped Store; either every write in
// fn commits or none do.
type Store interface {
	Transact(ctx context.Context, fn func(Store) error) error

	CreateResult(ctx context.Context, item *models.Result) error
	UpdateResult(ctx context.Context, item *models.Result) error
	GetResultByMatchID(ctx context.Context, matchID string) (*models.Result, error)
	ListResults(ctx context.Context, params ListResultsParams) ([]models.Result, error)
	CountResults(ctx context.Context, params ListResultsParams) (int64, error)

	CreateValidationChecks(ctx context.Context, item *models.ValidationChecks) error
	GetValidationChecksByMatchID(ctx context.Context, matchID string) (*models.ValidationChecks, error)

	CreditReward(ctx context.Context, account string, amount decimal.Decimal) error
	GetRewardBalance(ctx context.Context, account string) (decimal.Decimal, error)
	// ClearRewardBalance zeroes the account's balance and returns the amount
	// that was cleared (zero when the account had nothing accrued).
	ClearRewardBalance(ctx context.Context, account string) (decimal.Decimal, error)

	CreateNotification(ctx context.Context, item *models.Notification) error
	ListUndeliveredNotifications(ctx context.Context, limit int) ([]models.Notification, error)
	MarkNotificationDelivered(ctx context.Context, id string, at time.Time) error
	DeleteDeliveredNotificationsBefore(ctx context.Context, before time.Time) (int64, error)
}
