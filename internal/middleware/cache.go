package middleware

import (
	"github.com/gin-gonic/gin"
)

// NoStore marks responses as private to the requester. Portal views and
// API payloads are per-principal and must never be served from a shared cache.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
