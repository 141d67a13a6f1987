package repository

import (
	"context"

	"pdvcore/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FinancialRepository stores the accounting-side records emitted by the
// sale processor. Records are written once and never mutated by the engine.
type FinancialRepository interface {
	CreateTx(tx *gorm.DB, f *model.FinancialRecord) error
	ListByReference(ctx context.Context, referenceID uuid.UUID) ([]model.FinancialRecord, error)
}

type financialRepo struct{ db *gorm.DB }

func NewFinancialRepository(db *gorm.DB) FinancialRepository { return &financialRepo{db: db} }

func (r *financialRepo) CreateTx(tx *gorm.DB, f *model.FinancialRecord) error {
	return tx.Create(f).Error
}

func (r *financialRepo) ListByReference(ctx context.Context, referenceID uuid.UUID) ([]model.FinancialRecord, error) {
	var records []model.FinancialRecord
	err := r.db.WithContext(ctx).
		Where("reference_id = ?", referenceID).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}
