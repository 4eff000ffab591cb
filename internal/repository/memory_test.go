package repository

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statement-reconciliation-backend/internal/models"
)

func TestMemoryBillRepository_SettleGuardsStatus(t *testing.T) {
	repo := NewMemoryBillRepository()
	bill := &models.Bill{ID: uuid.New(), Amount: 50, Status: models.BillPending}
	require.NoError(t, repo.Create(bill))

	meta := SettlementMeta{BatchID: uuid.New(), TransactionID: uuid.New(), PaidAt: time.Now()}

	ok, err := repo.Settle(bill.ID, meta)
	require.NoError(t, err)
	assert.True(t, ok)

	// second settle finds the bill no longer open
	ok, err = repo.Settle(bill.ID, meta)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.GetByID(bill.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BillPaid, stored.Status)
	require.NotNil(t, stored.SettledByBatch)
	assert.Equal(t, meta.BatchID, *stored.SettledByBatch)
}

func TestMemoryBillRepository_ConcurrentSettleSingleWinner(t *testing.T) {
	repo := NewMemoryBillRepository()
	bill := &models.Bill{ID: uuid.New(), Amount: 50, Status: models.BillPending}
	require.NoError(t, repo.Create(bill))

	const sessions = 8
	var wg sync.WaitGroup
	wins := make([]bool, sessions)
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			wins[i], _ = repo.Settle(bill.ID, SettlementMeta{PaidAt: time.Now()})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, w := range wins {
		if w {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}

func TestMemoryBillRepository_ListOpen(t *testing.T) {
	repo := NewMemoryBillRepository()
	open := &models.Bill{ID: uuid.New(), Amount: 10, Status: models.BillPending}
	overdue := &models.Bill{ID: uuid.New(), Amount: 20, Status: models.BillOverdue}
	paid := &models.Bill{ID: uuid.New(), Amount: 30, Status: models.BillPaid}
	cancelled := &models.Bill{ID: uuid.New(), Amount: 40, Status: models.BillCancelled}
	for _, b := range []*models.Bill{open, overdue, paid, cancelled} {
		require.NoError(t, repo.Create(b))
	}

	bills, err := repo.ListOpen()
	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.Equal(t, open.ID, bills[0].ID)
	assert.Equal(t, overdue.ID, bills[1].ID)
}

func TestMemoryBatchRepository_Roundtrip(t *testing.T) {
	repo := NewMemoryBatchRepository()
	batch := &models.ReconciliationBatch{ID: uuid.New(), SourceName: "extrato", Status: models.BatchPending}
	require.NoError(t, repo.Create(batch))

	stored, err := repo.Get(batch.ID)
	require.NoError(t, err)
	assert.Equal(t, "extrato", stored.SourceName)

	stored.Status = models.BatchPartial
	require.NoError(t, repo.Save(stored))

	again, err := repo.Get(batch.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BatchPartial, again.Status)

	_, err = repo.Get(uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
