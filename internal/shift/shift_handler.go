package shift

import (
	"net/http"

	"github.com/Team-PayCheck/PayCheck-backend/internal/shared/apperror"
	"github.com/Team-PayCheck/PayCheck-backend/internal/shared/response"
	shifterrors "github.com/Team-PayCheck/PayCheck-backend/internal/shift/errors"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FromError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

func (h *Handler) Complete(c *gin.Context) {
	resp, err := h.service.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

func (h *Handler) Approve(c *gin.Context) {
	resp, err := h.service.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) ListByContract(c *gin.Context) {
	var q ListShiftsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.FromError(c, apperror.MapValidationError(err))
		return
	}
	from, err := parseDate(q.From)
	if err != nil {
		response.FromError(c, shifterrors.ErrInvalidDateFormat)
		return
	}
	to, err := parseDate(q.To)
	if err != nil {
		response.FromError(c, shifterrors.ErrInvalidDateFormat)
		return
	}

	resp, err := h.service.ListByContract(c.Request.Context(), c.Param("contractId"), from, to)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}
