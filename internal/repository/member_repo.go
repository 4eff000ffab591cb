package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"statement-reconciliation-backend/internal/models"
)

type GormMemberRepository struct {
	db *gorm.DB
}

func NewGormMemberRepository(db *gorm.DB) *GormMemberRepository {
	return &GormMemberRepository{db: db}
}

func (r *GormMemberRepository) Create(member *models.Member) error {
	return r.db.Create(member).Error
}

func (r *GormMemberRepository) OwnerName(id uuid.UUID) (string, bool) {
	var member models.Member
	if err := r.db.First(&member, "id = ?", id).Error; err != nil {
		return "", false
	}
	return member.Name, true
}
