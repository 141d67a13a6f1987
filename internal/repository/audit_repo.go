package repository

import (
	"context"

	"pdvcore/internal/model"

	"gorm.io/gorm"
)

// AuditRepository persists audit events drained from the queue by the
// worker pool.
type AuditRepository interface {
	Create(ctx context.Context, e *model.AuditEvent) error
	List(ctx context.Context, severity string, page, limit int) ([]model.AuditEvent, int64, error)
}

type auditRepo struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) AuditRepository { return &auditRepo{db: db} }

func (r *auditRepo) Create(ctx context.Context, e *model.AuditEvent) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *auditRepo) List(ctx context.Context, severity string, page, limit int) ([]model.AuditEvent, int64, error) {
	var events []model.AuditEvent
	var total int64

	q := r.db.WithContext(ctx).Model(&model.AuditEvent{})
	if severity != "" {
		q = q.Where("severity = ?", severity)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	err := q.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&events).Error
	return events, total, err
}
