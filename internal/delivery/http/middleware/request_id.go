package middleware

import (
	"go-intake-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with an id and attaches the client metadata
// used by the security logger and the login tracker.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set("RequestID", id)
		c.Header(RequestIDHeader, id)

		ctx := security.WithRequestMeta(c.Request.Context(), security.RequestMeta{
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			RequestID: id,
		})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
