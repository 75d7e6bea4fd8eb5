package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Result statuses. Only Completed and Disputed are ever set by the oracle
// engine; Cancelled and Ongoing are reserved for the match directory.
const (
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
	StatusDisputed  = "DISPUTED"
	StatusOngoing   = "ONGOING"
)

// Participant is one entry of a result's ordered outcome list. The winner
// index of a Result points into this list.
type Participant struct {
	Account string `json:"account"`
	Score   int64  `json:"score"`
}

// Result is the oracle's authoritative record of a match outcome, one row per
// match, created on first successful submission and never deleted.
type Result struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	MatchID      string `gorm:"type:varchar(100);not null;uniqueIndex"`
	GameContract string `gorm:"type:varchar(100);not null;index"`
	Submitter    string `gorm:"type:varchar(100);not null;index"`

	Status string `gorm:"type:varchar(16);not null;index"`

	// Ordered list of {account, score} pairs, JSON-encoded. Empty for legacy
	// free-text submissions.
	Participants datatypes.JSON `gorm:"type:jsonb"`
	WinnerIndex  int16          `gorm:"not null"`

	SchemaID   *string `gorm:"type:varchar(100)"`
	CustomData []byte  `gorm:"type:bytea"`
	ResultHash string  `gorm:"type:varchar(66);not null"`

	DurationSec     int64     `gorm:"not null;default:0"`
	SubmittedAt     time.Time `gorm:"type:timestamptz;not null"`
	DisputeDeadline time.Time `gorm:"type:timestamptz;not null;index"`

	IsFinalized bool `gorm:"not null;default:false;index"`
	IsDisputed  bool `gorm:"not null;default:false"`

	Disputer      *string          `gorm:"type:varchar(100)"`
	DisputeStake  *decimal.Decimal `gorm:"type:numeric(30,10)"`
	DisputeReason *string          `gorm:"type:text"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Result) TableName() string {
	return "results"
}

// ParticipantList decodes the JSON participants column.
func (r *Result) ParticipantList() ([]Participant, error) {
	if len(r.Participants) == 0 {
		return nil, nil
	}
	var out []Participant
	if err := json.Unmarshal(r.Participants, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EncodeParticipants renders the paired outcome list for the JSON column.
func EncodeParticipants(items []Participant) (datatypes.JSON, error) {
	if len(items) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
