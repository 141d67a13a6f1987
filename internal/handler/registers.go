package handler

import (
	"net/http"

	"pdvcore/internal/dto"
	"pdvcore/internal/model"
	"pdvcore/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RegisterHandler struct{ svc service.RegisterService }

func NewRegisterHandler(svc service.RegisterService) *RegisterHandler {
	return &RegisterHandler{svc: svc}
}

// Open godoc
// @Summary Opens a cash register for the operator
// @Tags registers
// @Accept json
// @Produce json
// @Param X-Operator-ID header string true "Operator UUID"
// @Param body body dto.OpenRegisterRequest true "Opening declaration"
// @Success 201 {object} dto.RegisterResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/registers/open [post]
func (h *RegisterHandler) Open(c *gin.Context) {
	var req dto.OpenRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	opID, ok := operatorID(c)
	if !ok {
		return
	}
	register, err := h.svc.Open(c.Request.Context(), opID, req.OpeningBalance)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, registerToResponse(register))
}

// Movement godoc
// @Summary Records a manual SUPPLY or BLEED cash movement
// @Tags registers
// @Accept json
// @Produce json
// @Param id path string true "Register UUID"
// @Param body body dto.CashMovementRequest true "Cash movement"
// @Success 201 {object} dto.CashTransactionResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/registers/{id}/movements [post]
func (h *RegisterHandler) Movement(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.CashMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cashTx, err := h.svc.AddTransaction(c.Request.Context(), id, req.Type, req.Amount, req.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, txToResponse(cashTx))
}

// Close godoc
// @Summary Closes the register against the operator's counted amount
// @Tags registers
// @Accept json
// @Produce json
// @Param id path string true "Register UUID"
// @Param body body dto.CloseRegisterRequest true "Counted cash declaration"
// @Success 200 {object} dto.RegisterResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/registers/{id}/close [post]
func (h *RegisterHandler) Close(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.CloseRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	register, err := h.svc.Close(c.Request.Context(), id, req.CountedAmount)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, registerToResponse(register))
}

// Summary godoc
// @Summary Replays the register's transaction log into an itemized summary
// @Tags registers
// @Produce json
// @Param id path string true "Register UUID"
// @Success 200 {object} dto.RegisterSummaryResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/registers/{id}/summary [get]
func (h *RegisterHandler) Summary(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	sum, err := h.svc.Summary(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaryToResponse(id, sum))
}

// Report returns the register, its replayed summary and the full
// transaction log in one payload.
func (h *RegisterHandler) Report(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	register, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	sum, err := h.svc.Summary(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	txs, err := h.svc.Transactions(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	resp := dto.RegisterReportResponse{
		Register: *registerToResponse(register),
		Summary:  *summaryToResponse(id, sum),
	}
	for i := range txs {
		resp.Transactions = append(resp.Transactions, *txToResponse(&txs[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Current returns the operator's open register, if any.
func (h *RegisterHandler) Current(c *gin.Context) {
	opID, ok := operatorID(c)
	if !ok {
		return
	}
	register, err := h.svc.OpenByOperator(c.Request.Context(), opID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, registerToResponse(register))
}

// List returns a paginated register history, optionally per operator.
func (h *RegisterHandler) List(c *gin.Context) {
	var filter dto.RegisterFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	var opID *uuid.UUID
	if filter.OperatorID != "" {
		id, _ := uuid.Parse(filter.OperatorID)
		opID = &id
	}
	regs, total, err := h.svc.List(c.Request.Context(), opID, filter.Page, filter.Limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	resp := dto.RegisterListResponse{
		Data:  make([]dto.RegisterResponse, 0, len(regs)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range regs {
		resp.Data = append(resp.Data, *registerToResponse(&regs[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func registerToResponse(r *model.CashRegister) *dto.RegisterResponse {
	return &dto.RegisterResponse{
		ID:                 r.ID,
		OperatorID:         r.OperatorID,
		Status:             r.Status,
		OpeningBalance:     r.OpeningBalance,
		CurrentBalance:     r.CurrentBalance,
		OpenedAt:           r.OpenedAt,
		ClosedAt:           r.ClosedAt,
		FinalCount:         r.FinalCount,
		Difference:         r.Difference,
		DifferenceSeverity: r.DifferenceSeverity,
	}
}

func txToResponse(t *model.CashTransaction) *dto.CashTransactionResponse {
	resp := &dto.CashTransactionResponse{
		ID:          t.ID,
		Type:        t.Type,
		Amount:      t.Amount,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
	if t.ReferenceID != nil {
		resp.Reference = t.ReferenceID.String()
	}
	return resp
}

func summaryToResponse(id uuid.UUID, s *service.RegisterSummary) *dto.RegisterSummaryResponse {
	return &dto.RegisterSummaryResponse{
		RegisterID: id,
		Opening:    s.Opening,
		Supply:     s.Supply,
		Bleed:      s.Bleed,
		SalesCash:  s.SalesCash,
		Calculated: s.Calculated,
	}
}
