package payroll

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	payrolls := r.Group("/payroll")
	{
		payrolls.POST("/recompute", h.Recompute)
	}

	r.GET("/contracts/:contractId/payroll", h.GetByPeriod)
	r.GET("/contracts/:contractId/payroll/history", h.History)
}
