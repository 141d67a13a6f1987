package handler

import (
	"net/http"

	"pdvcore/internal/dto"
	"pdvcore/internal/model"
	"pdvcore/internal/service"

	"github.com/gin-gonic/gin"
)

type LedgerHandler struct{ svc service.LedgerService }

func NewLedgerHandler(svc service.LedgerService) *LedgerHandler {
	return &LedgerHandler{svc: svc}
}

// History godoc
// @Summary Streams the product's kardex entries in chronological order
// @Tags ledger
// @Produce json
// @Param id path string true "Product UUID"
// @Success 200 {object} dto.KardexHistoryResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/products/{id}/kardex [get]
func (h *LedgerHandler) History(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp := dto.KardexHistoryResponse{
		ProductID: id.String(),
		Entries:   []dto.KardexEntryResponse{},
	}
	for entry, err := range h.svc.History(c.Request.Context(), id) {
		if err != nil {
			respondServiceError(c, err)
			return
		}
		resp.Entries = append(resp.Entries, *kardexEntryToResponse(&entry))
	}
	c.JSON(http.StatusOK, resp)
}

// Verify godoc
// @Summary Replays the kardex chain and reports both ledger invariants
// @Tags ledger
// @Produce json
// @Param id path string true "Product UUID"
// @Success 200 {object} dto.LedgerVerificationResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/products/{id}/kardex/verify [get]
func (h *LedgerHandler) Verify(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	v, err := h.svc.Verify(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	resp := dto.LedgerVerificationResponse{
		ProductID:     v.ProductID.String(),
		Entries:       v.Entries,
		ChainOK:       v.ChainOK,
		StockMatches:  v.StockMatches,
		LedgerBalance: v.LedgerBalance,
		ProductStock:  v.ProductStock,
	}
	if v.FirstBrokenEntry != nil {
		broken := v.FirstBrokenEntry.String()
		resp.FirstBrokenEntry = &broken
	}
	c.JSON(http.StatusOK, resp)
}

func kardexEntryToResponse(e *model.KardexEntry) *dto.KardexEntryResponse {
	return &dto.KardexEntryResponse{
		ID:            e.ID.String(),
		ProductID:     e.ProductID.String(),
		Type:          e.Type,
		QuantityDelta: e.QuantityDelta,
		BalanceAfter:  e.BalanceAfter,
		DocumentRef:   e.DocumentRef,
		Description:   e.Description,
		CreatedAt:     e.CreatedAt,
	}
}
