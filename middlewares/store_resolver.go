package middlewares

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/platefront/ordering-app/utils"
)

// StoreResolver membaca store id tenant dari header X-Store-ID. Edge router
// sudah meresolve subdomain ke store id sebelum request sampai ke sini.
func StoreResolver() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("X-Store-ID")
		if header == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("missing store identity"))
			c.Abort()
			return
		}

		storeID, err := strconv.ParseUint(header, 10, 32)
		if err != nil || storeID == 0 {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid store identity"))
			c.Abort()
			return
		}

		c.Set("store_id", uint(storeID))
		c.Next()
	}
}
