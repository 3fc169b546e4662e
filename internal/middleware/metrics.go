package middleware

import (
	"time"

	"askher-go/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics 记录每个请求的次数与耗时，按路由模板聚合。
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
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
