package repository

import (
	"context"
	"time"

	"pdvcore/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IntentRepository stores the write-ahead intent log of the sale processor.
// Create runs OUTSIDE the sale transaction: the intent must be durable
// before any mutation it describes.
type IntentRepository interface {
	Create(ctx context.Context, i *model.SaleIntent) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	// ListPending returns PENDING intents created before the cutoff —
	// intents inside the grace window may belong to an in-flight sale.
	ListPending(ctx context.Context, before time.Time) ([]model.SaleIntent, error)
}

type intentRepo struct{ db *gorm.DB }

func NewIntentRepository(db *gorm.DB) IntentRepository { return &intentRepo{db: db} }

func (r *intentRepo) Create(ctx context.Context, i *model.SaleIntent) error {
	return r.db.WithContext(ctx).Create(i).Error
}

func (r *intentRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&model.SaleIntent{}).
		Where("id = ?", id).Update("status", status).Error
}

func (r *intentRepo) ListPending(ctx context.Context, before time.Time) ([]model.SaleIntent, error) {
	var intents []model.SaleIntent
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", model.IntentPending, before).
		Order("created_at ASC").
		Find(&intents).Error
	return intents, err
}
