package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Movement types for KardexEntry.Type.
const (
	MovementSale       = "SALE"
	MovementEntry      = "ENTRY"
	MovementAdjustment = "ADJUSTMENT"
)

// KardexEntry is one line of the per-product stock ledger.
// Entries are NEVER updated or deleted — corrections are new entries.
// BalanceAfter forms a strict running sum per product:
//
//	BalanceAfter[n] == BalanceAfter[n-1] + QuantityDelta[n]
//
// The composite unique index on (document_ref, product_id) makes retried
// movements for the same originating document idempotent.
type KardexEntry struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_kardex_doc_product"`
	Type          string          `gorm:"type:varchar(20);not null"`
	QuantityDelta decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	// DocumentRef links the entry to the originating sale, goods receipt
	// or adjustment document. Empty for ad hoc corrections.
	DocumentRef string `gorm:"not null;default:'';uniqueIndex:idx_kardex_doc_product,where:document_ref <> ''"`
	Description string
	CreatedAt   time.Time `gorm:"index"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

// TableName overrides GORM's default pluralization — the original schema
// ships the table as "kardex".
func (KardexEntry) TableName() string { return "kardex" }
