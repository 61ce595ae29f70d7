package response

import (
	"errors"
	"net/http"

	"github.com/Team-PayCheck/PayCheck-backend/internal/shared/apperror"

	"github.com/gin-gonic/gin"
)

type ApiEnvelope struct {
	Ok    bool `json:"ok"`
	Data  any  `json:"data,omitempty"`
	Error any  `json:"error,omitempty"`
}

func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, ApiEnvelope{
		Ok:   true,
		Data: data,
	})
}

func Error(c *gin.Context, status int, errorCode string, message string, details interface{}) {
	c.JSON(status, ApiEnvelope{
		Ok: false,
		Error: map[string]interface{}{
			"code":    errorCode,
			"message": message,
			"details": details,
		},
	})
}

// FromError renders an AppError with its own status/code, anything else as a 500.
func FromError(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		Error(c, appErr.HTTPStatus, appErr.Code, appErr.Message, nil)
		return
	}
	Error(c, http.StatusInternalServerError, apperror.CodeInternalError, err.Error(), nil)
}
