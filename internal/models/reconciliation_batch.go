package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	BatchPending   = "pending"
	BatchPartial   = "partial"
	BatchCompleted = "completed"
)

// ReconciliationBatch is one import session: the transactions extracted from a
// single statement upload together with their resolution state. The transaction
// list is fixed at creation; only Status, AppliedBillIDs and ResolvedTxIDs move.
type ReconciliationBatch struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SourceName    string    `json:"source_name"`
	BankName      string    `json:"bank_name"`
	AccountNumber string    `json:"account_number"`
	Status        string    `gorm:"index" json:"status"` // pending | partial | completed

	Transactions []StatementTransaction `gorm:"foreignKey:BatchID" json:"transactions"`

	// AppliedBillIDs holds every bill id settled through this batch.
	AppliedBillIDs datatypes.JSONSlice[uuid.UUID] `json:"applied_bill_ids"`
	// ResolvedTxIDs holds every transaction the operator has dealt with,
	// whether by confirmed match or explicit skip.
	ResolvedTxIDs datatypes.JSONSlice[uuid.UUID] `json:"resolved_tx_ids"`

	ImportedAt  time.Time  `json:"imported_at"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Resolved reports whether the given transaction has been confirmed or skipped.
func (b *ReconciliationBatch) Resolved(txID uuid.UUID) bool {
	for _, id := range b.ResolvedTxIDs {
		if id == txID {
			return true
		}
	}
	return false
}

// Applied reports whether the given bill has been settled through this batch.
func (b *ReconciliationBatch) Applied(billID uuid.UUID) bool {
	for _, id := range b.AppliedBillIDs {
		if id == billID {
			return true
		}
	}
	return false
}

// Transaction returns the batch transaction with the given id, or nil.
func (b *ReconciliationBatch) Transaction(txID uuid.UUID) *StatementTransaction {
	for i := range b.Transactions {
		if b.Transactions[i].ID == txID {
			return &b.Transactions[i]
		}
	}
	return nil
}
