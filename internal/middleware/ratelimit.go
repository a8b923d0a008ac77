package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sacm-project/sacm-api/internal/ratelimit"
	"github.com/sacm-project/sacm-api/internal/service"
	appErrors "github.com/sacm-project/sacm-api/pkg/errors"
	"github.com/sacm-project/sacm-api/pkg/response"
)

// RateLimit rejects requests that exceed their endpoint class budget before
// any handler work happens. Rejections carry a Retry-After hint in seconds.
func RateLimit(governor *ratelimit.Governor, metricsSvc *service.MetricsService, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		identity := clientIdentity(c)
		result := governor.Allow(c.Request.Context(), identity, c.Request.URL.Path)
		if result.Allowed {
			c.Next()
			return
		}

		if metricsSvc != nil {
			metricsSvc.ObserveRateLimitDenied(result.Class.Name)
		}
		logger.Warn("rate limit exceeded",
			zap.String("identity", identity),
			zap.String("path", c.Request.URL.Path),
			zap.String("class", result.Class.Name),
			zap.Int("limit", result.Class.Limit),
		)

		retryAfter := int(result.RetryAfter.Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
		response.Error(c, appErrors.ErrTooManyRequests)
		c.Abort()
	}
}

// clientIdentity resolves who a request counts against: the first entry of
// X-Forwarded-For when present (the original client behind proxies),
// otherwise the peer address.
func clientIdentity(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		if first, _, found := strings.Cut(forwarded, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	return c.ClientIP()
}
