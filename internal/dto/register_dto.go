package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenRegisterRequest struct {
	OpeningBalance decimal.Decimal `json:"opening_balance" validate:"min=0"`
}

type CashMovementRequest struct {
	Type        string          `json:"type"        validate:"required,oneof=SUPPLY BLEED"`
	Amount      decimal.Decimal `json:"amount"      validate:"required,gt=0"`
	Description string          `json:"description" validate:"required,min=3"`
}

type CloseRegisterRequest struct {
	CountedAmount decimal.Decimal `json:"counted_amount" validate:"min=0"`
}

// RegisterFilter is bound from query string of GET /v1/registers.
type RegisterFilter struct {
	OperatorID string `form:"operator_id" validate:"omitempty,uuid"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type RegisterResponse struct {
	ID             uuid.UUID       `json:"id"`
	OperatorID     uuid.UUID       `json:"operator_id"`
	Status         string          `json:"status"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	OpenedAt       time.Time       `json:"opened_at"`
	ClosedAt       *time.Time      `json:"closed_at,omitempty"`

	FinalCount         *decimal.Decimal `json:"final_count,omitempty"`
	Difference         *decimal.Decimal `json:"difference,omitempty"`
	DifferenceSeverity *string          `json:"difference_severity,omitempty"`
}

type CashTransactionResponse struct {
	ID          uuid.UUID       `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Reference   string          `json:"reference,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type RegisterSummaryResponse struct {
	RegisterID uuid.UUID       `json:"register_id"`
	Opening    decimal.Decimal `json:"opening"`
	Supply     decimal.Decimal `json:"supply"`
	Bleed      decimal.Decimal `json:"bleed"`
	SalesCash  decimal.Decimal `json:"sales_cash"`
	Calculated decimal.Decimal `json:"calculated"`
}

type RegisterReportResponse struct {
	Register     RegisterResponse          `json:"register"`
	Summary      RegisterSummaryResponse   `json:"summary"`
	Transactions []CashTransactionResponse `json:"transactions"`
}

type RegisterListResponse struct {
	Data  []RegisterResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
