package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"statement-reconciliation-backend/internal/models"
)

type GormBatchRepository struct {
	db *gorm.DB
}

func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

func (r *GormBatchRepository) Create(batch *models.ReconciliationBatch) error {
	return r.db.Create(batch).Error
}

func (r *GormBatchRepository) Get(id uuid.UUID) (*models.ReconciliationBatch, error) {
	var batch models.ReconciliationBatch
	err := r.db.
		Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&batch, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &batch, nil
}

func (r *GormBatchRepository) Save(batch *models.ReconciliationBatch) error {
	// transactions are fixed at creation; only batch columns move
	return r.db.Omit("Transactions").Save(batch).Error
}

func (r *GormBatchRepository) AppendConfirmed(match *models.ConfirmedMatch) error {
	return r.db.Create(match).Error
}
