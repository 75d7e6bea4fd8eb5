package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RewardBalance is one pull-payment ledger entry. Resolution outcomes only
// ever increase Amount; withdrawal zeroes it.
type RewardBalance struct {
	ID      uint64          `gorm:"primaryKey;autoIncrement"`
	Account string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Amount  decimal.Decimal `gorm:"type:numeric(30,10);not null;default:0"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (RewardBalance) TableName() string {
	return "reward_balances"
}
