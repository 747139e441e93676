package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Bogdy12/uclapi/pkg/redis"
	"github.com/Bogdy12/uclapi/pkg/response"
)

// RateLimit 基于 Redis 滑动窗口的速率限制中间件
// 按客户端 IP + 路由计数；rdb 为 nil 或 limit<=0 时不限流，Redis 出错时放行
func RateLimit(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Warn("限流检查失败，放行请求", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			response.TooManyRequests(c, 20010, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
