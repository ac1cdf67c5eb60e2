package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/abdxl-cloud/RuqyaHub/internal/config"
)

// RateLimit applies a fixed window per client IP and route, backed by
// Redis INCR/EXPIRE. Intended for the anonymous chat endpoints, which
// take no credentials at all. Fails open when Redis is unreachable:
// throttling is protection, not a correctness requirement.
func RateLimit(rdb *redis.Client, cfg *config.RateLimitConfig, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled || rdb == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", c.ClientIP(), c.FullPath())
		count, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			log.Warn().Err(err).Msg("rate limiter unavailable")
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(c.Request.Context(), key, cfg.Window())
		}

		if count > int64(cfg.Requests) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    -1,
				"message": "too many requests",
			})
			return
		}
		c.Next()
	}
}
