package middleware

import (
	"net/http"
	"time"

	"cafeteria-api/logger"

	"github.com/gin-gonic/gin"
)

// RequestLogger writes one access line per request. Query strings are left
// out since reset links and searches may carry personal data.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		switch {
		case status >= http.StatusInternalServerError:
			log.Errorf("%s %s -> %d (%s) %s", c.Request.Method, c.Request.URL.Path, status, latency, c.Errors.String())
		case status >= http.StatusBadRequest:
			log.Warnf("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, latency)
		default:
			log.Infof("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, latency)
		}
	}
}

// CORS allows the browser front end to call the API
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
