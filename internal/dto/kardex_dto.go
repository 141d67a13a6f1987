package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type KardexEntryResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	Type          string          `json:"type"`
	QuantityDelta decimal.Decimal `json:"quantity_delta"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	DocumentRef   string          `json:"document_ref,omitempty"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type KardexHistoryResponse struct {
	ProductID string                `json:"product_id"`
	Entries   []KardexEntryResponse `json:"entries"`
}

type LedgerVerificationResponse struct {
	ProductID        string          `json:"product_id"`
	Entries          int             `json:"entries"`
	ChainOK          bool            `json:"chain_ok"`
	StockMatches     bool            `json:"stock_matches"`
	FirstBrokenEntry *string         `json:"first_broken_entry,omitempty"`
	LedgerBalance    decimal.Decimal `json:"ledger_balance"`
	ProductStock     decimal.Decimal `json:"product_stock"`
}
