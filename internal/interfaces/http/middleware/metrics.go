// internal/interfaces/http/middleware/metrics.go
package middleware

import (
	"time"

	"github.com/berkelium/storefront/internal/pkg/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request count and latency per route template
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(route, c.Writer.Status(), float64(time.Since(start).Microseconds())/1000)
	}
}
