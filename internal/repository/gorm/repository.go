package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"matchoracle/internal/models"
	"matchoracle/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Transact(ctx context.Context, fn func(repository.Store) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// --- results -----------------------------------------------------------------

func (s *Store) CreateResult(ctx context.Context, item *models.Result) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) UpdateResult(ctx context.Context, item *models.Result) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) GetResultByMatchID(ctx context.Context, matchID string) (*models.Result, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Result
	err := s.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func applyResultFilters(query *gorm.DB, params repository.ListResultsParams) *gorm.DB {
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	if params.Finalized != nil {
		query = query.Where("is_finalized = ?", *params.Finalized)
	}
	if params.Disputed != nil {
		query = query.Where("is_disputed = ?", *params.Disputed)
	}
	return query
}

func (s *Store) ListResults(ctx context.Context, params repository.ListResultsParams) ([]models.Result, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := applyResultFilters(s.db.WithContext(ctx).Model(&models.Result{}), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "submitted_at")
	limit := normalizeLimit(params.Limit, 100)
	offset := normalizeOffset(params.Offset)
	var items []models.Result
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountResults(ctx context.Context, params repository.ListResultsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	query := applyResultFilters(s.db.WithContext(ctx).Model(&models.Result{}), params)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// --- validation checks --------------------------------------------------------

func (s *Store) CreateValidationChecks(ctx context.Context, item *models.ValidationChecks) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetValidationChecksByMatchID(ctx context.Context, matchID string) (*models.ValidationChecks, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.ValidationChecks
	err := s.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// --- reward ledger -------------------------------------------------------------

func (s *Store) CreditReward(ctx context.Context, account string, amount decimal.Decimal) error {
	if s == nil || s.db == nil {
		return nil
	}
	if strings.TrimSpace(account) == "" || amount.Sign() <= 0 {
		return nil
	}
	now := time.Now().UTC()
	item := &models.RewardBalance{
		Account:   account,
		Amount:    amount,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account"}},
		DoUpdates: clause.Assignments(map[string]any{
			"amount":     gorm.Expr("reward_balances.amount + excluded.amount"),
			"updated_at": now,
		}),
	}).Create(item).Error
}

func (s *Store) GetRewardBalance(ctx context.Context, account string) (decimal.Decimal, error) {
	if s == nil || s.db == nil {
		return decimal.Zero, nil
	}
	var item models.RewardBalance
	err := s.db.WithContext(ctx).
		Where("account = ?", account).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return item.Amount, nil
}

func (s *Store) ClearRewardBalance(ctx context.Context, account string) (decimal.Decimal, error) {
	if s == nil || s.db == nil {
		return decimal.Zero, nil
	}
	var item models.RewardBalance
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("account = ?", account).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	if item.Amount.Sign() <= 0 {
		return decimal.Zero, nil
	}
	amount := item.Amount
	res := s.db.WithContext(ctx).
		Model(&models.RewardBalance{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"amount":     decimal.Zero,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return decimal.Zero, res.Error
	}
	return amount, nil
}

// --- notifications --------------------------------------------------------------

func (s *Store) CreateNotification(ctx context.Context, item *models.Notification) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListUndeliveredNotifications(ctx context.Context, limit int) ([]models.Notification, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 100)
	var items []models.Notification
	if err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("delivered = ?", false).
		Order("created_at asc").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) MarkNotificationDelivered(ctx context.Context, id string, at time.Time) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"delivered":    true,
			"delivered_at": at,
		}).Error
}

func (s *Store) DeleteDeliveredNotificationsBefore(ctx context.Context, before time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("delivered = ?", true).
		Where("delivered_at < ?", before).
		Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

// --- helpers ---------------------------------------------------------------------

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	switch column {
	case "submitted_at", "dispute_deadline", "created_at", "updated_at":
	default:
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}
