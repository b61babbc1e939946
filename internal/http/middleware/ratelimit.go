package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fitdex_battle/internal/logger"
	"fitdex_battle/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

// RateLimiter - лимит запросов в минуту на клиента (фиксированное окно в Redis)
type RateLimiter struct {
	rdb       *redis.Client
	perMinute int
	clock     clockwork.Clock
	metrics   *metrics.Metrics
}

// NewRateLimiter без Redis или с perMinute = 0 пропускает все запросы
func NewRateLimiter(rdb *redis.Client, perMinute int, m *metrics.Metrics, clock clockwork.Clock) *RateLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RateLimiter{rdb: rdb, perMinute: perMinute, clock: clock, metrics: m}
}

func (l *RateLimiter) Enabled() bool {
	return l != nil && l.rdb != nil && l.perMinute > 0
}

// Middleware ключует клиента по user_id, если он уже известен, иначе по IP
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Enabled() {
			c.Next()
			return
		}

		client := c.ClientIP()
		if v, ok := c.Get(UserIDKey); ok {
			if id, ok := v.(string); ok && id != "" {
				client = "u:" + id
			}
		}

		now := l.clock.Now()
		window := now.Unix() / 60
		key := fmt.Sprintf("ratelimit:%s:%d", client, window)

		ctx := c.Request.Context()
		pipe := l.rdb.TxPipeline()
		incr := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, time.Minute)
		if _, err := pipe.Exec(ctx); err != nil {
			// Redis недоступен - пропускаем
			logger.WithContext(ctx).Warn("rate limiter unavailable", "error", err)
			c.Next()
			return
		}

		count := int(incr.Val())
		remaining := l.perMinute - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(l.perMinute))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > l.perMinute {
			if l.metrics != nil {
				l.metrics.RateLimited.Inc()
			}
			retry := 60 - now.Unix()%60
			c.Header("Retry-After", strconv.FormatInt(retry, 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
