package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification event types emitted for external indexers.
const (
	EventResultSubmitted = "result.submitted"
	EventSchemaValidated = "schema.validated"
	EventResultDisputed  = "result.disputed"
	EventDisputeResolved = "dispute.resolved"
	EventResultFinalized = "result.finalized"
)

// Notification is an outbox row, written in the same transaction as the state
// change it describes and delivered asynchronously by the dispatcher.
type Notification struct {
	ID        string         `gorm:"type:varchar(36);primaryKey"`
	EventType string         `gorm:"type:varchar(50);not null;index"`
	MatchID   string         `gorm:"type:varchar(100);not null;index"`
	Payload   datatypes.JSON `gorm:"type:jsonb"`

	Delivered   bool       `gorm:"not null;default:false;index"`
	DeliveredAt *time.Time `gorm:"type:timestamptz"`
	CreatedAt   time.Time  `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (Notification) TableName() string {
	return "notifications"
}
