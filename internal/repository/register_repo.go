package repository

import (
	"context"

	"pdvcore/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegisterRepository is the data access contract for cash registers and
// their append-only transaction logs.
type RegisterRepository interface {
	CreateRegisterTx(tx *gorm.DB, r *model.CashRegister) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error)
	// FindOpenByOperator returns nil, gorm.ErrRecordNotFound when the
	// operator has no open register.
	FindOpenByOperator(ctx context.Context, operatorID uuid.UUID) (*model.CashRegister, error)
	UpdateRegisterTx(tx *gorm.DB, r *model.CashRegister) error
	CreateTransactionTx(tx *gorm.DB, t *model.CashTransaction) error
	ListTransactions(ctx context.Context, registerID uuid.UUID) ([]model.CashTransaction, error)
	ListRegisters(ctx context.Context, operatorID *uuid.UUID, page, limit int) ([]model.CashRegister, int64, error)

	DB() *gorm.DB
}

type registerRepo struct{ db *gorm.DB }

func NewRegisterRepository(db *gorm.DB) RegisterRepository { return &registerRepo{db: db} }

func (r *registerRepo) CreateRegisterTx(tx *gorm.DB, reg *model.CashRegister) error {
	return tx.Create(reg).Error
}

func (r *registerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CashRegister, error) {
	var reg model.CashRegister
	err := r.db.WithContext(ctx).First(&reg, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registerRepo) FindOpenByOperator(ctx context.Context, operatorID uuid.UUID) (*model.CashRegister, error) {
	var reg model.CashRegister
	err := r.db.WithContext(ctx).
		Where("operator_id = ? AND status = ?", operatorID, model.RegisterOpen).
		First(&reg).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registerRepo) UpdateRegisterTx(tx *gorm.DB, reg *model.CashRegister) error {
	return tx.Save(reg).Error
}

func (r *registerRepo) CreateTransactionTx(tx *gorm.DB, t *model.CashTransaction) error {
	return tx.Create(t).Error
}

func (r *registerRepo) ListTransactions(ctx context.Context, registerID uuid.UUID) ([]model.CashTransaction, error) {
	var txs []model.CashTransaction
	err := r.db.WithContext(ctx).
		Where("register_id = ?", registerID).
		Order("created_at ASC, id ASC").
		Find(&txs).Error
	return txs, err
}

func (r *registerRepo) ListRegisters(ctx context.Context, operatorID *uuid.UUID, page, limit int) ([]model.CashRegister, int64, error) {
	var regs []model.CashRegister
	var total int64

	q := r.db.WithContext(ctx).Model(&model.CashRegister{})
	if operatorID != nil {
		q = q.Where("operator_id = ?", *operatorID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	err := q.Order("opened_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&regs).Error
	return regs, total, err
}

func (r *registerRepo) DB() *gorm.DB { return r.db }
