package models

import "time"

// ValidationChecks is the audit record written alongside a Result in the same
// transaction. One row per match, immutable after creation.
type ValidationChecks struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement"`
	MatchID string `gorm:"type:varchar(100);not null;uniqueIndex"`

	TimingValid        bool `gorm:"not null"`
	AuthorizationValid bool `gorm:"not null"`
	DataIntegrityValid bool `gorm:"not null"`
	SchemaValid        bool `gorm:"not null"`
	ParticipantsValid  bool `gorm:"not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (ValidationChecks) TableName() string {
	return "validation_checks"
}
