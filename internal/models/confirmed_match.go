package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ConfirmedMatch is an accepted proposal, appended to the batch history once
// the referenced bill has been settled. Immutable; reversing a settlement is a
// separate compensating operation outside this module.
type ConfirmedMatch struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	BatchID       uuid.UUID      `gorm:"index" json:"batch_id"`
	TransactionID uuid.UUID      `gorm:"index" json:"transaction_id"`
	BillID        uuid.UUID      `gorm:"index" json:"bill_id"`
	Confidence    int            `json:"confidence"`
	MatchType     string         `json:"match_type"`
	Details       datatypes.JSON `json:"details,omitempty"`
	ConfirmedAt   time.Time      `json:"confirmed_at"`
}
