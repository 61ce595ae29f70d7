package payroll

import (
	"net/http"

	"github.com/Team-PayCheck/PayCheck-backend/internal/shared/apperror"
	"github.com/Team-PayCheck/PayCheck-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Recompute(c *gin.Context) {
	var req RecomputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Recompute(c.Request.Context(), req.ContractID, req.Year, req.Month)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

func (h *Handler) GetByPeriod(c *gin.Context) {
	var q PeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.FromError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.GetByContractAndPeriod(c.Request.Context(), c.Param("contractId"), q.Year, q.Month)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

func (h *Handler) History(c *gin.Context) {
	resp, err := h.service.ListByContract(c.Request.Context(), c.Param("contractId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}
