package handler

import (
	"net/http"

	"pdvcore/internal/apierror"
	"pdvcore/internal/dto"
	"pdvcore/internal/repository"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct{ repo repository.AuditRepository }

func NewAuditHandler(repo repository.AuditRepository) *AuditHandler {
	return &AuditHandler{repo: repo}
}

// List godoc
// @Summary Lists persisted audit events, newest first
// @Tags audit
// @Produce json
// @Param severity query string false "Filter by severity (info, warning, critical)"
// @Success 200 {object} dto.AuditListResponse
// @Router /v1/audit [get]
func (h *AuditHandler) List(c *gin.Context) {
	var filter dto.AuditQueryFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 100
	}

	events, total, err := h.repo.List(c.Request.Context(), filter.Severity, filter.Page, filter.Limit)
	if err != nil {
		c.Error(err) //nolint:errcheck
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
		return
	}

	data := make([]dto.AuditEventResponse, 0, len(events))
	for _, e := range events {
		data = append(data, dto.AuditEventResponse{
			ID:        e.ID.String(),
			Action:    e.Action,
			Details:   e.Details,
			Severity:  e.Severity,
			CreatedAt: e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, dto.AuditListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
}
