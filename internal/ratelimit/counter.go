package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/eragon/internal/config"
	"go.uber.org/zap"
)

const keyCounterClient = "coupon:counter:ip:%s"

// CounterLimiter throttles the public like/dislike/use endpoints per client IP.
type CounterLimiter struct {
	enabled bool
	limiter Limiter
	rate    float64
	burst   int
}

func NewCounterLimiter(cfg config.Config, client *redis.Client, log *zap.Logger) *CounterLimiter {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled {
		return &CounterLimiter{}
	}

	var limiter Limiter
	if bucket := NewTokenBucket(client); bucket != nil {
		limiter = bucket
	} else {
		log.Warn("redis not configured, counter rate limit is per process")
		limiter = NewMemoryBucket()
	}

	return &CounterLimiter{
		enabled: true,
		limiter: limiter,
		rate:    limitCfg.CounterRate,
		burst:   limitCfg.CounterBurst,
	}
}

func (l *CounterLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *CounterLimiter) AllowClient(ctx context.Context, clientIP string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	return l.limiter.Allow(ctx, fmt.Sprintf(keyCounterClient, strings.TrimSpace(clientIP)), l.rate, l.burst)
}
