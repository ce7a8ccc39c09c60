package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-backend/internal/shared/response"
	"storefront-backend/pkg/jwt"
)

const (
	ContextKeyUserID = "user_id"
	ContextKeyRole   = "role"
)

// AuthMiddleware - Middleware xác thực JWT access token
func AuthMiddleware(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Lấy token từ Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.ErrorResponse(c, http.StatusUnauthorized, "AUTH_001", "missing authorization header")
			c.Abort()
			return
		}

		// 2. Extract token từ "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.ErrorResponse(c, http.StatusUnauthorized, "AUTH_002", "invalid authorization header format")
			c.Abort()
			return
		}

		// 3. Verify và parse JWT
		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			response.ErrorResponse(c, http.StatusUnauthorized, "AUTH_003", "invalid token")
			c.Abort()
			return
		}

		// 4. user_id trong claims phải là UUID
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			response.ErrorResponse(c, http.StatusUnauthorized, "AUTH_004", "invalid user ID in token")
			c.Abort()
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyRole, claims.Role)

		c.Next()
	}
}
