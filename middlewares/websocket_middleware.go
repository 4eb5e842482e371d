package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/platefront/ordering-app/utils"
)

func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(401)
			return
		}

		// Validasi token
		claims, err := utils.ValidateToken(token)
		if err != nil {
			c.AbortWithStatus(401)
			return
		}

		// Set role, user_id, dan store_id ke context. Store diambil dari
		// claims, bukan header: client ws tidak bisa dipercaya memilih store.
		c.Set("role", claims.Role)
		c.Set("user_id", claims.UserID)
		c.Set("store_id", claims.StoreID)

		c.Next()
	}
}
