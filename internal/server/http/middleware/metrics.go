package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestObserver records request counts and latencies.
type RequestObserver interface {
	ObserveRequest(handler, method string, status int, elapsed time.Duration)
}

// Metrics reports every request against its route template, so ids in paths
// do not explode label cardinality.
func Metrics(observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		observer.ObserveRequest(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
