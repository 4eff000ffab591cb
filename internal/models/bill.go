package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	BillPending   = "pending"
	BillPaid      = "paid"
	BillOverdue   = "overdue"
	BillCancelled = "cancelled"
)

// Bill is an outstanding receivable owned by the billing subsystem.
// The reconciliation ledger is the only writer.
type Bill struct {
	ID      uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID uuid.UUID  `gorm:"index" json:"owner_id"`
	Amount  float64    `gorm:"index" json:"amount"`
	Status  string     `gorm:"index" json:"status"` // pending | paid | overdue | cancelled
	DueDate time.Time  `json:"due_date"`
	PaidAt  *time.Time `json:"paid_at,omitempty"`
	// Settlement metadata stamped when a confirmed match marks the bill paid.
	SettledByBatch *uuid.UUID `json:"settled_by_batch,omitempty"`
	SettledByTx    *uuid.UUID `json:"settled_by_tx,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Open reports whether the bill can still be claimed by a proposal.
func (b *Bill) Open() bool {
	return b.Status == BillPending || b.Status == BillOverdue
}
