package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chrissi82/Dashboard-IU/backend/internal/api/handler"
)

// Logger 请求日志中间件
// 记录路由模板而非原始路径，学期名与模块 ID 以独立字段输出
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", GetRequestID(c)),
		}
		if user := c.GetString(handler.CtxUsername); user != "" {
			fields = append(fields, zap.String("username", user))
		}
		if name := c.Param("name"); name != "" {
			fields = append(fields, zap.String("semester", name))
		}
		if id := c.Param("id"); id != "" {
			fields = append(fields, zap.String("module_id", id))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			logger.Error("请求处理失败", fields...)
		case status >= 400:
			logger.Warn("客户端错误", fields...)
		default:
			logger.Info("请求完成", fields...)
		}
	}
}
