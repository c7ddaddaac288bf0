package server

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/eragon/internal/observability/logger"
	"go.uber.org/zap"
)

// CounterRateLimit throttles like/dislike/use per client IP. Limiter failures let the request through.
func (s *Server) CounterRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.counterLimiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		result, err := s.counterLimiter.AllowClient(ctx, c.ClientIP())
		if err != nil {
			logger.FromContext(ctx).Warn("counter rate limit check failed", zap.Error(err))
			c.Next()
			return
		}
		if result.Allowed {
			c.Next()
			return
		}

		retryAfter := int(math.Ceil(result.RetryAfter.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", "0")

		s.obsMetrics.RecordRateLimitDenied(ctx, c.FullPath())
		logger.FromContext(ctx).Warn("counter rate limit exceeded",
			zap.String("endpoint", c.FullPath()),
			zap.Int("retry_after", retryAfter),
		)
		AbortWithError(c, ErrRateLimited)
	}
}
