package oracle

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"matchoracle/internal/repository"
)

// Withdraw zeroes the caller's accrued balance and returns the cleared
// amount. The balance is cleared before any value moves, so a re-entering
// caller finds nothing left to withdraw.
func (e *Engine) Withdraw(ctx context.Context, account string) (decimal.Decimal, error) {
	if account == "" {
		return decimal.Zero, fmt.Errorf("%w: account is required", ErrUnauthorized)
	}

	var amount decimal.Decimal
	err := e.Store.Transact(ctx, func(tx repository.Store) error {
		cleared, err := tx.ClearRewardBalance(ctx, account)
		if err != nil {
			return err
		}
		if cleared.Sign() <= 0 {
			return fmt.Errorf("%w: account %s has no accrued rewards", ErrEmptyBalance, account)
		}
		amount = cleared
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	e.logger().Info("rewards withdrawn",
		zap.String("account", account),
		zap.String("amount", amount.String()),
	)
	return amount, nil
}

// RewardBalance reports the caller's current withdrawable balance.
func (e *Engine) RewardBalance(ctx context.Context, account string) (decimal.Decimal, error) {
	if account == "" {
		return decimal.Zero, fmt.Errorf("%w: account is required", ErrUnauthorized)
	}
	return e.Store.GetRewardBalance(ctx, account)
}
