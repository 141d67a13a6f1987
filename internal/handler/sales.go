package handler

import (
	"net/http"
	"time"

	"pdvcore/internal/dto"
	"pdvcore/internal/repository"
	"pdvcore/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SaleHandler struct{ svc service.SaleService }

func NewSaleHandler(svc service.SaleService) *SaleHandler { return &SaleHandler{svc: svc} }

// Finalize godoc
// @Summary Finalizes a sale: stock, sale record, finances and cash in one unit
// @Tags sales
// @Accept json
// @Produce json
// @Param X-Operator-ID header string true "Operator UUID"
// @Param body body dto.FinalizeSaleRequest true "Sale lines and payment"
// @Success 201 {object} dto.SaleResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/sales [post]
func (h *SaleHandler) Finalize(c *gin.Context) {
	var req dto.FinalizeSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	opID, ok := operatorID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Finalize(c.Request.Context(), opID, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Void godoc
// @Summary Voids a completed sale with compensating records
// @Tags sales
// @Accept json
// @Produce json
// @Param id path string true "Sale UUID"
// @Param body body dto.VoidSaleRequest true "Void reason"
// @Success 204
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/sales/{id}/void [post]
func (h *SaleHandler) Void(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.VoidSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Void(c.Request.Context(), id, req.Reason); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get returns one sale with its items.
func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List returns a paginated, filtered sale listing. Default window is today.
func (h *SaleHandler) List(c *gin.Context) {
	var q dto.SaleQueryFilter
	if !bindQueryAndValidate(c, &q) {
		return
	}

	filter := repository.SaleFilter{Page: q.Page, Limit: q.Limit}
	if q.Status != "all" {
		filter.Status = q.Status
	}
	if q.RegisterID != "" {
		id, _ := uuid.Parse(q.RegisterID)
		filter.RegisterID = &id
	}

	day := time.Now().UTC()
	if q.Date != "" {
		parsed, err := time.Parse("2006-01-02", q.Date)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		day = parsed
	}
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	filter.From, filter.To = &from, &to

	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
