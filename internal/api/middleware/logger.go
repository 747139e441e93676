package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// slowRequest 超过该耗时的成功请求按 Warn 记录，通常是冷缓存下的整课表解析
const slowRequest = 2 * time.Second

// quietPaths 探活路径不写访问日志
var quietPaths = map[string]struct{}{
	"/health": {},
}

// Logger 访问日志
// route 记录匹配到的路由模板（如 /timetable/bymodule），未匹配时为空
// Handler 通过 c.Error 挂载的内部错误随访问日志一并输出
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := quietPaths[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", GetRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.String("uri", c.Request.URL.RequestURI()),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.Int("bytes", c.Writer.Size()),
			zap.String("client_ip", c.ClientIP()),
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			fields = append(fields, zap.Strings("errors", errs.Errors()))
		}

		switch {
		case status >= 500:
			logger.Error("请求处理失败", fields...)
		case status >= 400:
			logger.Warn("请求被拒绝", fields...)
		case latency > slowRequest:
			logger.Warn("慢请求", fields...)
		default:
			logger.Info("请求完成", fields...)
		}
	}
}
