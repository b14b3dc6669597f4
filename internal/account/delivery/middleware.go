package delivery

import (
	"net/http"
	"strings"

	"localsync-backend/internal/account/usecase"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware resolves the bearer token to an account and stores it
// on the request context for downstream handlers.
func AuthMiddleware(accountUsecase usecase.AccountUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		account, err := accountUsecase.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("account", account)
		c.Set("accountID", account.ID)
		c.Next()
	}
}
