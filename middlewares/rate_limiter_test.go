package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestStrictRateLimiterBlocksAfterBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/login", NewStrictRateLimiter(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("POST", "/login", nil))
		assert.Equal(t, http.StatusOK, w.Code, "attempt %d", i+1)
	}

	// Percobaan keenam dalam burst yang sama ditolak
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimitQuotaPerStore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(2, 60)
	router := gin.New()
	router.GET("/orders", rl.RateLimit(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func(storeID string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/orders", nil)
		if storeID != "" {
			req.Header.Set("X-Store-ID", storeID)
		}
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("1"))
	assert.Equal(t, http.StatusOK, do("1"))
	assert.Equal(t, http.StatusTooManyRequests, do("1"))

	// Store lain di IP yang sama punya kuota sendiri
	assert.Equal(t, http.StatusOK, do("2"))
}
