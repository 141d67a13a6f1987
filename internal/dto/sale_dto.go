package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity"   validate:"required,gt=0"`
}

type FinalizeSaleRequest struct {
	Items         []SaleItemRequest `json:"items"          validate:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=CASH DEBIT CREDIT PIX"`
	// AmountPaid is required for CASH and ignored otherwise.
	AmountPaid *decimal.Decimal `json:"amount_paid"    validate:"omitempty,min=0"`
	CustomerID *string          `json:"customer_id"    validate:"omitempty,uuid"`
}

type VoidSaleRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

// SaleQueryFilter is bound from query string of GET /v1/sales.
type SaleQueryFilter struct {
	Date       string `form:"date"`                     // YYYY-MM-DD; empty = today
	Status     string `form:"status,default=COMPLETED"` // COMPLETED | VOIDED | all
	RegisterID string `form:"register_id" validate:"omitempty,uuid"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ProductID string          `json:"product_id"`
	Product   string          `json:"product,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type SaleResponse struct {
	ID            string             `json:"id"`
	RegisterID    string             `json:"register_id"`
	OperatorID    string             `json:"operator_id"`
	CustomerID    *string            `json:"customer_id,omitempty"`
	Items         []SaleItemResponse `json:"items"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	AmountPaid    *decimal.Decimal   `json:"amount_paid,omitempty"`
	Change        *decimal.Decimal   `json:"change,omitempty"`
	Status        string             `json:"status"`
	CreatedAt     string             `json:"created_at"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
