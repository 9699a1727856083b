package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/BBQAnChang/SBHomework/pkg/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestID attaches a request-scoped logger carrying a fresh request id and
// echoes the id in the response
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, id := logger.WithRequestID(c.Request.Context())
		ctx = logger.WithFields(ctx, logrus.Fields{
			"http_method": c.Request.Method,
			"http_path":   c.Request.URL.Path,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
