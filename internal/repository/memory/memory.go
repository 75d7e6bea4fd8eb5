// Package memory provides an in-memory Store used by engine tests and local
// development without PostgreSQL.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"matchoracle/internal/models"
	"matchoracle/internal/repository"
)

type Store struct {
	mu sync.Mutex

	results       map[string]models.Result
	checks        map[string]models.ValidationChecks
	balances      map[string]decimal.Decimal
	notifications map[string]models.Notification

	nextID uint64
}

func New() *Store {
	return &Store{
		results:       map[string]models.Result{},
		checks:        map[string]models.ValidationChecks{},
		balances:      map[string]decimal.Decimal{},
		notifications: map[string]models.Notification{},
	}
}

// Transact snapshots all tables, runs fn against a tx-scoped handle, and
// restores the snapshot when fn fails, mirroring the all-or-nothing contract
// of the gorm implementation. The mutex is held for the whole transaction;
// concurrent callers on the shared Store block until it commits or rolls
// back, they never observe intermediate writes.
func (s *Store) Transact(ctx context.Context, fn func(repository.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := cloneMap(s.results)
	checks := cloneMap(s.checks)
	balances := cloneMap(s.balances)
	notifications := cloneMap(s.notifications)
	nextID := s.nextID

	if err := fn(&txStore{s: s}); err != nil {
		s.results = results
		s.checks = checks
		s.balances = balances
		s.notifications = notifications
		s.nextID = nextID
		return err
	}
	return nil
}

func cloneMap[V any](in map[string]V) map[string]V {
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// txStore is the transaction-scoped view handed to Transact callbacks. The
// owning Transact already holds the mutex, so its methods go straight to the
// unlocked operations.
type txStore struct {
	s *Store
}

// Nested transactions run inside the outer one, as with gorm's SavePoint-less
// default.
func (t *txStore) Transact(ctx context.Context, fn func(repository.Store) error) error {
	return fn(t)
}

func (t *txStore) CreateResult(ctx context.Context, item *models.Result) error {
	return t.s.createResult(item)
}

func (t *txStore) UpdateResult(ctx context.Context, item *models.Result) error {
	return t.s.updateResult(item)
}

func (t *txStore) GetResultByMatchID(ctx context.Context, matchID string) (*models.Result, error) {
	return t.s.getResultByMatchID(matchID)
}

func (t *txStore) ListResults(ctx context.Context, params repository.ListResultsParams) ([]models.Result, error) {
	return t.s.listResults(params)
}

func (t *txStore) CountResults(ctx context.Context, params repository.ListResultsParams) (int64, error) {
	return t.s.countResults(params)
}

func (t *txStore) CreateValidationChecks(ctx context.Context, item *models.ValidationChecks) error {
	return t.s.createValidationChecks(item)
}

func (t *txStore) GetValidationChecksByMatchID(ctx context.Context, matchID string) (*models.ValidationChecks, error) {
	return t.s.getValidationChecksByMatchID(matchID)
}

func (t *txStore) CreditReward(ctx context.Context, account string, amount decimal.Decimal) error {
	return t.s.creditReward(account, amount)
}

func (t *txStore) GetRewardBalance(ctx context.Context, account string) (decimal.Decimal, error) {
	return t.s.getRewardBalance(account)
}

func (t *txStore) ClearRewardBalance(ctx context.Context, account string) (decimal.Decimal, error) {
	return t.s.clearRewardBalance(account)
}

func (t *txStore) CreateNotification(ctx context.Context, item *models.Notification) error {
	return t.s.createNotification(item)
}

func (t *txStore) ListUndeliveredNotifications(ctx context.Context, limit int) ([]models.Notification, error) {
	return t.s.listUndeliveredNotifications(limit)
}

func (t *txStore) MarkNotificationDelivered(ctx context.Context, id string, at time.Time) error {
	return t.s.markNotificationDelivered(id, at)
}

func (t *txStore) DeleteDeliveredNotificationsBefore(ctx context.Context, before time.Time) (int64, error) {
	return t.s.deleteDeliveredNotificationsBefore(before)
}

// --- results -----------------------------------------------------------------

func (s *Store) CreateResult(ctx context.Context, item *models.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createResult(item)
}

func (s *Store) createResult(item *models.Result) error {
	s.nextID++
	item.ID = s.nextID
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	item.UpdatedAt = time.Now().UTC()
	s.results[item.MatchID] = *item
	return nil
}

func (s *Store) UpdateResult(ctx context.Context, item *models.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateResult(item)
}

func (s *Store) updateResult(item *models.Result) error {
	item.UpdatedAt = time.Now().UTC()
	s.results[item.MatchID] = *item
	return nil
}

func (s *Store) GetResultByMatchID(ctx context.Context, matchID string) (*models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getResultByMatchID(matchID)
}

func (s *Store) getResultByMatchID(matchID string) (*models.Result, error) {
	item, ok := s.results[matchID]
	if !ok {
		return nil, nil
	}
	out := item
	return &out, nil
}

func matchesFilters(item models.Result, params repository.ListResultsParams) bool {
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" && item.Status != strings.TrimSpace(*params.Status) {
		return false
	}
	if params.Finalized != nil && item.IsFinalized != *params.Finalized {
		return false
	}
	if params.Disputed != nil && item.IsDisputed != *params.Disputed {
		return false
	}
	return true
}

func (s *Store) ListResults(ctx context.Context, params repository.ListResultsParams) ([]models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listResults(params)
}

func (s *Store) listResults(params repository.ListResultsParams) ([]models.Result, error) {
	var items []models.Result
	for _, item := range s.results {
		if matchesFilters(item, params) {
			items = append(items, item)
		}
	}
	asc := params.Asc != nil && *params.Asc
	sort.Slice(items, func(i, j int) bool {
		if asc {
			return items[i].SubmittedAt.Before(items[j].SubmittedAt)
		}
		return items[i].SubmittedAt.After(items[j].SubmittedAt)
	})
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil, nil
	}
	items = items[offset:]
	limit := params.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit < len(items) {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) CountResults(ctx context.Context, params repository.ListResultsParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countResults(params)
}

func (s *Store) countResults(params repository.ListResultsParams) (int64, error) {
	var total int64
	for _, item := range s.results {
		if matchesFilters(item, params) {
			total++
		}
	}
	return total, nil
}

// --- validation checks ----------------------------------------------------------

func (s *Store) CreateValidationChecks(ctx context.Context, item *models.ValidationChecks) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createValidationChecks(item)
}

func (s *Store) createValidationChecks(item *models.ValidationChecks) error {
	s.nextID++
	item.ID = s.nextID
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	s.checks[item.MatchID] = *item
	return nil
}

func (s *Store) GetValidationChecksByMatchID(ctx context.Context, matchID string) (*models.ValidationChecks, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getValidationChecksByMatchID(matchID)
}

func (s *Store) getValidationChecksByMatchID(matchID string) (*models.ValidationChecks, error) {
	item, ok := s.checks[matchID]
	if !ok {
		return nil, nil
	}
	out := item
	return &out, nil
}

// --- reward ledger ----------------------------------------------------------------

func (s *Store) CreditReward(ctx context.Context, account string, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creditReward(account, amount)
}

func (s *Store) creditReward(account string, amount decimal.Decimal) error {
	if strings.TrimSpace(account) == "" || amount.Sign() <= 0 {
		return nil
	}
	s.balances[account] = s.balances[account].Add(amount)
	return nil
}

func (s *Store) GetRewardBalance(ctx context.Context, account string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getRewardBalance(account)
}

func (s *Store) getRewardBalance(account string) (decimal.Decimal, error) {
	return s.balances[account], nil
}

func (s *Store) ClearRewardBalance(ctx context.Context, account string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearRewardBalance(account)
}

func (s *Store) clearRewardBalance(account string) (decimal.Decimal, error) {
	amount := s.balances[account]
	if amount.Sign() <= 0 {
		return decimal.Zero, nil
	}
	s.balances[account] = decimal.Zero
	return amount, nil
}

// --- notifications -----------------------------------------------------------------

func (s *Store) CreateNotification(ctx context.Context, item *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createNotification(item)
}

func (s *Store) createNotification(item *models.Notification) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	s.notifications[item.ID] = *item
	return nil
}

func (s *Store) ListUndeliveredNotifications(ctx context.Context, limit int) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listUndeliveredNotifications(limit)
}

func (s *Store) listUndeliveredNotifications(limit int) ([]models.Notification, error) {
	var items []models.Notification
	for _, item := range s.notifications {
		if !item.Delivered {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkNotificationDelivered(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markNotificationDelivered(id, at)
}

func (s *Store) markNotificationDelivered(id string, at time.Time) error {
	item, ok := s.notifications[id]
	if !ok {
		return nil
	}
	item.Delivered = true
	item.DeliveredAt = &at
	s.notifications[id] = item
	return nil
}

func (s *Store) DeleteDeliveredNotificationsBefore(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteDeliveredNotificationsBefore(before)
}

func (s *Store) deleteDeliveredNotificationsBefore(before time.Time) (int64, error) {
	var n int64
	for id, item := range s.notifications {
		if item.Delivered && item.DeliveredAt != nil && item.DeliveredAt.Before(before) {
			delete(s.notifications, id)
			n++
		}
	}
	return n, nil
}
