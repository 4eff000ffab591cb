// Package repository abstracts persistence behind load/save interfaces keyed
// by bill and batch id, keeping the reconciliation core storage-agnostic.
package repository

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"statement-reconciliation-backend/internal/models"
)

var ErrNotFound = errors.New("record not found")

// SettlementMeta is stamped onto a bill when a confirmed match settles it.
type SettlementMeta struct {
	BatchID       uuid.UUID
	TransactionID uuid.UUID
	PaidAt        time.Time
}

// BillRepository is the billing collaborator surface. The reconciliation
// ledger is the sole writer; the matcher only reads.
type BillRepository interface {
	// ListOpen returns outstanding bills (pending or overdue) in a stable order.
	ListOpen() ([]models.Bill, error)
	GetByID(id uuid.UUID) (*models.Bill, error)
	Create(bill *models.Bill) error
	// Settle transitions the bill to paid, but only if it is still open at the
	// moment of the update. Returns false when the bill was already settled or
	// cancelled; racing confirmations resolve to exactly one success.
	Settle(id uuid.UUID, meta SettlementMeta) (bool, error)
}

// BatchRepository persists reconciliation batches with their transactions.
type BatchRepository interface {
	Create(batch *models.ReconciliationBatch) error
	Get(id uuid.UUID) (*models.ReconciliationBatch, error)
	Save(batch *models.ReconciliationBatch) error
	AppendConfirmed(match *models.ConfirmedMatch) error
}

// MemberRepository is the owner directory consumed for fuzzy disambiguation.
type MemberRepository interface {
	Create(member *models.Member) error
	// OwnerName satisfies the matcher's OwnerDirectory.
	OwnerName(id uuid.UUID) (string, bool)
}
