package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/themis/telemetry"
)

// Metrics records request counts and latency. Requests are labelled by the
// matched route template, not the raw path.
func Metrics(m *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
