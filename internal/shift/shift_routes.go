package shift

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	shifts := r.Group("/shifts")
	{
		shifts.POST("", h.Create)
		shifts.PATCH("/:id", h.Update)
		shifts.POST("/:id/complete", h.Complete)
		shifts.POST("/:id/approve", h.Approve)
		shifts.DELETE("/:id", h.Delete)
	}

	r.GET("/contracts/:contractId/shifts", h.ListByContract)
}
