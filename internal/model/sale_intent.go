package model

import (
	"time"

	"github.com/google/uuid"
)

// Intent log states. PENDING intents found on startup are resolved by the
// recovery pass: either the sale committed (mark COMMITTED) or its partial
// effects are compensated (mark ROLLED_BACK).
const (
	IntentPending    = "PENDING"
	IntentCommitted  = "COMMITTED"
	IntentRolledBack = "ROLLED_BACK"
)

// SaleIntent is the write-ahead record persisted before the sale cascade
// touches stock, cash or financial state. Its ID doubles as the sale ID, so
// every downstream artifact (kardex document_ref, cash transaction
// reference, financial record reference) can be correlated back to it.
type SaleIntent struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OperatorID uuid.UUID `gorm:"type:uuid;not null"`
	RegisterID uuid.UUID `gorm:"type:uuid;not null"`
	// Payload is the JSON-encoded resolved sale (lines, totals, payment)
	// kept for manual reconciliation when automatic recovery fails.
	Payload   []byte    `gorm:"type:jsonb;not null"`
	Status    string    `gorm:"type:varchar(15);not null;default:'PENDING';index"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}
