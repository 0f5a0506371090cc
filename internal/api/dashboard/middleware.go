package dashboard

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/civicsync/civic-dashboard/internal/metrics"
	"github.com/civicsync/civic-dashboard/internal/models"
	"github.com/civicsync/civic-dashboard/pkg/logger"
)

// Identity headers set by the upstream identity provider.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

const actorKey = "actor"

// Identity reads the caller identity headers into the request context.
// Missing or unknown roles are treated as citizen.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := models.Actor{
			UserID: strings.TrimSpace(c.GetHeader(HeaderUserID)),
			Role:   models.RoleCitizen,
		}
		if models.Role(strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderUserRole)))) == models.RoleAuthority {
			actor.Role = models.RoleAuthority
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

func actorFrom(c *gin.Context) models.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(models.Actor); ok {
			return actor
		}
	}
	return models.Actor{Role: models.RoleCitizen}
}

// RequestLogger logs one line per request and records HTTP metrics.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		duration := time.Since(start)

		metrics.RecordHTTPRequest(c.Request.Method, route, strconv.Itoa(status), duration.Seconds())

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("route", route).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// RegisterMetrics exposes the Prometheus registry on path.
func RegisterMetrics(router gin.IRouter, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}
