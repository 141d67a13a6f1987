package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Register lifecycle states.
const (
	RegisterOpen   = "OPEN"
	RegisterClosed = "CLOSED"
)

// Cash transaction types. OPENING, SUPPLY and SALE increase the balance,
// BLEED decreases it, CLOSING is a terminal snapshot and not additive.
const (
	CashOpening = "OPENING"
	CashSupply  = "SUPPLY"
	CashBleed   = "BLEED"
	CashSale    = "SALE"
	CashClosing = "CLOSING"
)

// Severity classification of the counted-vs-calculated difference at close.
const (
	DifferenceInfo     = "info"
	DifferenceWarning  = "warning"
	DifferenceCritical = "critical"
)

// CashRegister represents one register shift for one operator.
// Exactly one OPEN register is permitted per operator; a CLOSED register is
// archived and never mutated again — reopening creates a fresh instance.
type CashRegister struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Status     string    `gorm:"type:varchar(10);not null;default:'OPEN';index"`
	OperatorID uuid.UUID `gorm:"type:uuid;not null;index"`
	// OpeningBalance is set at open time and immutable afterwards.
	OpeningBalance decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// CurrentBalance is the incremental left-fold over the transaction log.
	// At close it is snapshotted to the replayed (calculated) value.
	CurrentBalance decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// FinalCount is the operator's physical cash count declared at close.
	FinalCount *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// Difference = FinalCount - calculated balance at close time.
	Difference         *decimal.Decimal `gorm:"type:decimal(12,2)"`
	DifferenceSeverity *string          `gorm:"type:varchar(10)"`
	OpenedAt           time.Time
	ClosedAt           *time.Time

	Transactions []CashTransaction `gorm:"foreignKey:RegisterID"`
}

// CashTransaction is an immutable event in a register's cash log.
// The log is append-only; CurrentBalance is derivable from it at any time.
type CashTransaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RegisterID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type        string          `gorm:"type:varchar(10);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Description string          `gorm:"not null"`
	// ReferenceID links back to the originating sale, when any.
	ReferenceID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time  `gorm:"index"`
}
