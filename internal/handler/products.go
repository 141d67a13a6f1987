package handler

import (
	"net/http"

	"pdvcore/internal/dto"
	"pdvcore/internal/repository"
	"pdvcore/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct{ svc service.ProductService }

func NewProductHandler(svc service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// Create godoc
// @Summary Creates a product, seeding the stock ledger when initial stock is declared
// @Tags products
// @Accept json
// @Produce json
// @Param body body dto.CreateProductRequest true "Product data"
// @Success 201 {object} dto.ProductResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Get returns one product by ID.
func (h *ProductHandler) Get(c *gin.Context) {
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

// GetByCode serves the price-check lookup by product code.
func (h *ProductHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	resp, err := h.svc.GetByCode(c.Request.Context(), code)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List returns a paginated catalog listing.
func (h *ProductHandler) List(c *gin.Context) {
	var q dto.ProductQueryFilter
	if !bindQueryAndValidate(c, &q) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), repository.ProductFilter{
		Name:   q.Search,
		Active: q.Active,
		Page:   q.Page,
		Limit:  q.Limit,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AdjustStock godoc
// @Summary Applies a manual ENTRY or ADJUSTMENT movement through the ledger
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product UUID"
// @Param body body dto.AdjustStockRequest true "Stock movement"
// @Success 201 {object} dto.KardexEntryResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/products/{id}/stock [post]
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	entry, err := h.svc.AdjustStock(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, kardexEntryToResponse(entry))
}

// StockAlerts lists active products at or below their minimum stock.
func (h *ProductHandler) StockAlerts(c *gin.Context) {
	alerts, err := h.svc.StockAlerts(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": alerts})
}
