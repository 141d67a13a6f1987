package repository

import (
	"context"
	"time"

	"pdvcore/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// KardexRepository provides append-only access to the stock ledger.
// There is deliberately no Update or Delete: corrections are new entries.
type KardexRepository interface {
	CreateTx(tx *gorm.DB, e *model.KardexEntry) error
	// FindByDocumentTx returns the entry already written for the
	// (documentRef, productID) pair, if any — the idempotency probe for
	// retried movements.
	FindByDocumentTx(tx *gorm.DB, documentRef string, productID uuid.UUID) (*model.KardexEntry, error)
	// ListByProduct returns up to limit entries for the product strictly
	// after the (createdAt, id) cursor, ordered by timestamp ascending.
	ListByProduct(ctx context.Context, productID uuid.UUID, after time.Time, afterID uuid.UUID, limit int) ([]model.KardexEntry, error)
	ListByDocument(ctx context.Context, documentRef string) ([]model.KardexEntry, error)
}

type kardexRepo struct{ db *gorm.DB }

func NewKardexRepository(db *gorm.DB) KardexRepository { return &kardexRepo{db: db} }

func (r *kardexRepo) CreateTx(tx *gorm.DB, e *model.KardexEntry) error {
	return tx.Create(e).Error
}

func (r *kardexRepo) FindByDocumentTx(tx *gorm.DB, documentRef string, productID uuid.UUID) (*model.KardexEntry, error) {
	var e model.KardexEntry
	err := tx.Where("document_ref = ? AND product_id = ?", documentRef, productID).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *kardexRepo) ListByProduct(ctx context.Context, productID uuid.UUID, after time.Time, afterID uuid.UUID, limit int) ([]model.KardexEntry, error) {
	var entries []model.KardexEntry
	// (created_at, id) keyset pagination keeps the scan restartable and
	// stable even when two entries share a timestamp.
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND (created_at > ? OR (created_at = ? AND id > ?))",
			productID, after, after, afterID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *kardexRepo) ListByDocument(ctx context.Context, documentRef string) ([]model.KardexEntry, error) {
	var entries []model.KardexEntry
	err := r.db.WithContext(ctx).
		Where("document_ref = ?", documentRef).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}
