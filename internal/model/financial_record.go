package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Financial record types and states.
const (
	FinancialIncome  = "INCOME"
	FinancialExpense = "EXPENSE"

	FinancialPending = "PENDING"
	FinancialPaid    = "PAID"
)

// FinancialRecord is the accounting-side footprint of a sale (or its
// reversal). The sale processor creates it and never mutates it afterwards.
type FinancialRecord struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Type     string          `gorm:"type:varchar(10);not null"`
	Amount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Category string          `gorm:"not null"`
	Date     time.Time       `gorm:"not null;index"`
	Status   string          `gorm:"type:varchar(10);not null;default:'PENDING'"`
	// ReferenceID links back to the sale or external document.
	ReferenceID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt   time.Time
}
