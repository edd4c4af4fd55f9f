package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sportshub-social/pkg/redis"
)

// IPRateLimit 基于IP的简单限流中间件
// 固定窗口计数，Redis不可用时直接放行
func IPRateLimit(rdb *redis.RedisClient, maxPerMinute int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := fmt.Sprintf("ip_limit:%s", c.ClientIP())

		count, err := rdb.Incr(ctx, key)
		if err != nil {
			c.Next()
			return
		}

		// 首次计数时设置窗口过期
		if count == 1 {
			_ = rdb.Expire(ctx, key, time.Minute)
		}

		if count > maxPerMinute {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": "too many requests, try again later",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
