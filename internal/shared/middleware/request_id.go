package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// RequestID reuses an incoming X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}

		c.Set("request_id", requestID)
		c.Header(HeaderRequestID, requestID)

		c.Next()
	}
}
