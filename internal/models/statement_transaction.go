package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	KindDebit  = "debit"
	KindCredit = "credit"
)

// StatementTransaction is one posted entry extracted from a bank export.
// Amount is always the absolute value; polarity lives in Kind only, because
// bank exports are inconsistent about signed amounts.
type StatementTransaction struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BatchID     uuid.UUID `gorm:"index" json:"batch_id"`
	Position    int       `json:"position"` // order within the statement
	Date        string    `gorm:"column:posting_date" json:"date"` // YYYY-MM-DD
	Amount      float64   `gorm:"index" json:"amount"`
	Description string    `json:"description"`
	Kind        string    `json:"kind"` // debit | credit
	RawMemo     string    `json:"raw_memo,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
