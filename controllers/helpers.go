package controllers

import (
	"github.com/gin-gonic/gin"
)

// storeIDFrom mengambil store id tenant yang diset oleh StoreResolver.
func storeIDFrom(c *gin.Context) uint {
	storeIDInterface, exists := c.Get("store_id")
	if !exists {
		return 0
	}
	storeID, ok := storeIDInterface.(uint)
	if !ok {
		return 0
	}
	return storeID
}
