package middleware

import (
	"github.com/gin-gonic/gin"
)

// NoStore disables caching for per-session responses such as result pages and downloads.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
