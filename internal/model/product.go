package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog record the stock ledger folds balances into.
// Stock is decimal(12,3) because weight-based units sell fractional
// quantities (e.g. 0.250 kg).
type Product struct {
	ID    uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code  string          `gorm:"uniqueIndex;not null"`
	Name  string          `gorm:"index;not null"`
	Price decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Cost  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Stock mirrors BalanceAfter of the product's latest kardex entry.
	// It is only ever written together with a new entry.
	Stock     decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	MinStock  decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	Unit      string          `gorm:"not null;default:'unit'"`
	Active    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
