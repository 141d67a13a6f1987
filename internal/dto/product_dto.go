package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Code         string          `json:"code"          validate:"required,min=1,max=40"`
	Name         string          `json:"name"          validate:"required,min=2,max=120"`
	Price        decimal.Decimal `json:"price"         validate:"min=0"`
	Cost         decimal.Decimal `json:"cost"          validate:"min=0"`
	MinStock     decimal.Decimal `json:"min_stock"     validate:"min=0"`
	Unit         string          `json:"unit"          validate:"omitempty,max=10"`
	InitialStock decimal.Decimal `json:"initial_stock" validate:"min=0"`
}

type AdjustStockRequest struct {
	QuantityDelta decimal.Decimal `json:"quantity_delta" validate:"required"`
	Type          string          `json:"type"           validate:"required,oneof=ENTRY ADJUSTMENT"`
	DocumentRef   string          `json:"document_ref"   validate:"omitempty,max=60"`
	Description   string          `json:"description"    validate:"omitempty,max=255"`
}

// ProductQueryFilter is bound from query string of GET /v1/products.
type ProductQueryFilter struct {
	Search string `form:"search"`
	Active string `form:"active,default=true"` // true | false | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=100" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID       string          `json:"id"`
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Cost     decimal.Decimal `json:"cost"`
	Stock    decimal.Decimal `json:"stock"`
	MinStock decimal.Decimal `json:"min_stock"`
	Unit     string          `json:"unit"`
	Active   bool            `json:"active"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type StockAlertResponse struct {
	ProductID string          `json:"product_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Stock     decimal.Decimal `json:"stock"`
	MinStock  decimal.Decimal `json:"min_stock"`
}
