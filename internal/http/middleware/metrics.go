package middleware

import (
	"strconv"
	"time"

	"fitdex_battle/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics считает запросы и время ответа по шаблону маршрута
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.HTTPRequests.WithLabelValues(c.Request.Method, route, status).Inc()
		m.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
