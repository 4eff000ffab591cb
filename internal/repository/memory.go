package repository

import (
	"sync"

	"github.com/google/uuid"

	"statement-reconciliation-backend/internal/models"
)

// In-memory repository implementations. They back the unit tests and let the
// reconciliation core run without a database.

type MemoryBillRepository struct {
	mu    sync.Mutex
	bills []models.Bill
}

func NewMemoryBillRepository() *MemoryBillRepository {
	return &MemoryBillRepository{}
}

func (r *MemoryBillRepository) ListOpen() ([]models.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var open []models.Bill
	for _, b := range r.bills {
		if b.Open() {
			open = append(open, b)
		}
	}
	return open, nil
}

func (r *MemoryBillRepository) GetByID(id uuid.UUID) (*models.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.bills {
		if r.bills[i].ID == id {
			b := r.bills[i]
			return &b, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryBillRepository) Create(bill *models.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bills = append(r.bills, *bill)
	return nil
}

func (r *MemoryBillRepository) Settle(id uuid.UUID, meta SettlementMeta) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.bills {
		if r.bills[i].ID != id {
			continue
		}
		if !r.bills[i].Open() {
			return false, nil
		}
		paidAt := meta.PaidAt
		batchID := meta.BatchID
		txID := meta.TransactionID
		r.bills[i].Status = models.BillPaid
		r.bills[i].PaidAt = &paidAt
		r.bills[i].SettledByBatch = &batchID
		r.bills[i].SettledByTx = &txID
		return true, nil
	}
	return false, nil
}

type MemoryBatchRepository struct {
	mu        sync.Mutex
	batches   map[uuid.UUID]models.ReconciliationBatch
	confirmed []models.ConfirmedMatch
}

func NewMemoryBatchRepository() *MemoryBatchRepository {
	return &MemoryBatchRepository{batches: make(map[uuid.UUID]models.ReconciliationBatch)}
}

func (r *MemoryBatchRepository) Create(batch *models.ReconciliationBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches[batch.ID] = *batch
	return nil
}

func (r *MemoryBatchRepository) Get(id uuid.UUID) (*models.ReconciliationBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	batch, ok := r.batches[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &batch, nil
}

func (r *MemoryBatchRepository) Save(batch *models.ReconciliationBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.batches[batch.ID]; !ok {
		return ErrNotFound
	}
	r.batches[batch.ID] = *batch
	return nil
}

func (r *MemoryBatchRepository) AppendConfirmed(match *models.ConfirmedMatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.confirmed = append(r.confirmed, *match)
	return nil
}

// ConfirmedMatches returns the confirmed-match history for a batch.
func (r *MemoryBatchRepository) ConfirmedMatches(batchID uuid.UUID) []models.ConfirmedMatch {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ConfirmedMatch
	for _, m := range r.confirmed {
		if m.BatchID == batchID {
			out = append(out, m)
		}
	}
	return out
}

type MemoryMemberRepository struct {
	mu      sync.Mutex
	members map[uuid.UUID]models.Member
}

func NewMemoryMemberRepository() *MemoryMemberRepository {
	return &MemoryMemberRepository{members: make(map[uuid.UUID]models.Member)}
}

func (r *MemoryMemberRepository) Create(member *models.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[member.ID] = *member
	return nil
}

func (r *MemoryMemberRepository) OwnerName(id uuid.UUID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	member, ok := r.members[id]
	if !ok {
		return "", false
	}
	return member.Name, true
}
