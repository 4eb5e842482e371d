package middlewares

import (
	"github.com/gin-gonic/gin"
)

// SecurityHeaders memasang header keamanan untuk storefront dan dashboard.
// CSP mengizinkan koneksi websocket ke origin sendiri untuk live dashboard
// dan gambar item dari CDN eksternal.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Content-Security-Policy", "default-src 'self'; connect-src 'self' ws: wss:; img-src 'self' data: https:")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Header("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

		c.Next()
	}
}
