package httpx

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Gunvolt24/cartsync/internal/ports"
	"github.com/Gunvolt24/cartsync/pkg/ctxmeta"
	"github.com/Gunvolt24/cartsync/pkg/metrics"
)

// RequestLogger — access-лог и HTTP-метрики. request_id, user_id и trace_id добавляет логгер.
// Служебные /metrics и /ping пропускаются.
func RequestLogger(log ports.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		switch route {
		case "/metrics", "/ping":
			return
		case "":
			// без маршрута (404/405) — метка одна, чтобы не плодить серии по сырым путям
			route = "unmatched"
		}

		elapsed := time.Since(start)
		status := c.Writer.Status()
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, statusClass(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(elapsed.Seconds())

		sp, _ := ctxmeta.SpanIDFromContext(c.Request.Context())
		log.Infof(c.Request.Context(),
			"request method=%s route=%s path=%s status=%d duration=%s size=%d span=%s",
			c.Request.Method, route, c.Request.URL.Path, status, elapsed, c.Writer.Size(), sp,
		)
	}
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
