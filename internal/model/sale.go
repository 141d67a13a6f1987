package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment methods accepted at the register.
const (
	PaymentCash   = "CASH"
	PaymentDebit  = "DEBIT"
	PaymentCredit = "CREDIT"
	PaymentPix    = "PIX"
)

// Sale states.
const (
	SaleCompleted = "COMPLETED"
	SaleVoided    = "VOIDED"
)

// Sale is an immutable snapshot of a finalized transaction. Prices and
// quantities are frozen at sale time and never track later product edits.
// Reversal is a compensating cascade, not an edit — only the status flag
// moves, once, to VOIDED.
type Sale struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RegisterID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	OperatorID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerID    *uuid.UUID      `gorm:"type:uuid"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod string          `gorm:"type:varchar(10);not null"`
	// AmountPaid and Change are set only for CASH payments.
	AmountPaid *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Change     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Status     string           `gorm:"type:varchar(10);not null;default:'COMPLETED'"`
	CreatedAt  time.Time        `gorm:"index"`

	Items []SaleItem `gorm:"foreignKey:SaleID"`
}

// SaleItem is one frozen line of a sale.
type SaleItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
