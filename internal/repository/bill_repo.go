package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"statement-reconciliation-backend/internal/models"
)

type GormBillRepository struct {
	db *gorm.DB
}

func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

func (r *GormBillRepository) ListOpen() ([]models.Bill, error) {
	var bills []models.Bill
	err := r.db.
		Where("status IN ?", []string{models.BillPending, models.BillOverdue}).
		Order("due_date ASC, id ASC").
		Find(&bills).Error
	return bills, err
}

func (r *GormBillRepository) GetByID(id uuid.UUID) (*models.Bill, error) {
	var bill models.Bill
	if err := r.db.First(&bill, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &bill, nil
}

func (r *GormBillRepository) Create(bill *models.Bill) error {
	return r.db.Create(bill).Error
}

// Settle is a single conditional UPDATE guarded by the open statuses, so two
// sessions racing on the same bill cannot both succeed.
func (r *GormBillRepository) Settle(id uuid.UUID, meta SettlementMeta) (bool, error) {
	res := r.db.Model(&models.Bill{}).
		Where("id = ? AND status IN ?", id, []string{models.BillPending, models.BillOverdue}).
		Updates(map[string]interface{}{
			"status":           models.BillPaid,
			"paid_at":          meta.PaidAt,
			"settled_by_batch": meta.BatchID,
			"settled_by_tx":    meta.TransactionID,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
