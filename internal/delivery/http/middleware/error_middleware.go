package middleware

import (
	"errors"
	"net/http"

	"go-intake-backend/internal/delivery/http/response"
	"go-intake-backend/pkg/apperror"
	"go-intake-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Kind == apperror.KindInternal {
				logger.Log.Error("internal error", "path", c.FullPath(), "request_id", c.GetString("RequestID"), "error", appErr.Err)
				response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
				return
			}
			var detail interface{}
			if len(appErr.Fields) > 0 {
				detail = response.ErrorDetail{Fields: appErr.Fields}
			}
			response.Error(c, appErr.Code, appErr.Message, detail)
			return
		}

		// Never expose internal error details to clients
		logger.Log.Error("unhandled error", "path", c.FullPath(), "request_id", c.GetString("RequestID"), "error", err)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
